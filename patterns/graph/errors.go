package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGraph wraps the build errors reported by Validate.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrUnknownNode is recorded when an edge references a handle the graph
	// did not issue.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDeadEnd is returned when a run stops at a node other than the end
	// node because none of its outgoing edges applies.
	ErrDeadEnd = errors.New("no applicable edge")

	// ErrMaxStepsExceeded is returned when a run executes more nodes than
	// the configured step limit.
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
)

// NodeError reports a node failure during a run.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (nodeError *NodeError) Error() string {
	return fmt.Sprintf("node %q failed at step %d: %v", nodeError.Node, nodeError.Step, nodeError.Err)
}

func (nodeError *NodeError) Unwrap() error {
	return nodeError.Err
}

// DeadEndError names the node where a run got stuck.
type DeadEndError struct {
	Node string
}

func (deadEnd *DeadEndError) Error() string {
	return fmt.Sprintf("dead end at node %q: %v", deadEnd.Node, ErrDeadEnd)
}

func (deadEnd *DeadEndError) Unwrap() error {
	return ErrDeadEnd
}
