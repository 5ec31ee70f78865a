package graph

import (
	"context"
	"fmt"
	"time"
)

// Run executes the graph from the start node on a copy of initial and
// returns the final state.
//
// The returned state is meaningful on error too: it holds every mutation
// made before the failure. Errors are *NodeError for a failing node,
// *DeadEndError when no edge applies, ErrMaxStepsExceeded when the step
// limit is hit, the context error on cancellation and ErrInvalidGraph when
// the graph was wired incorrectly (in which case no node runs).
func (graph *Graph[S]) Run(ctx context.Context, initial S) (S, error) {
	state := initial
	if err := graph.Validate(); err != nil {
		graph.observeRunFinished(ctx, 0, err)
		return state, err
	}

	runStart := time.Now()
	err := graph.execute(ctx, &state)
	graph.observeRunFinished(ctx, time.Since(runStart), err)
	return state, err
}

func (graph *Graph[S]) execute(ctx context.Context, state *S) error {
	current := graph.start

	for step := 0; current != graph.end; step++ {
		node := graph.nodes[current]

		if step >= graph.config.maxSteps {
			return fmt.Errorf("%w: limit %d reached before node %q", ErrMaxStepsExceeded, graph.config.maxSteps, node.Name())
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled before node %q: %w", node.Name(), err)
		}

		graph.observeNodeStart(ctx, node.Name(), step)
		nodeStart := time.Now()
		err := node.Run(ctx, state)
		graph.observeNodeFinished(ctx, node.Name(), step, time.Since(nodeStart), err)
		if err != nil {
			return &NodeError{Node: node.Name(), Step: step, Err: err}
		}

		next, found := graph.next(current, state)
		if !found {
			return &DeadEndError{Node: node.Name()}
		}
		current = next
	}

	return nil
}
