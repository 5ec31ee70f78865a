package graph

import (
	"context"
	"errors"
	"fmt"
)

// Names of the nodes every graph starts with.
const (
	StartNodeName = "start"
	EndNodeName   = "end"
)

// NodeID is the handle of a node within the graph that created it.
type NodeID int

// Node is one processing step. Run mutates the state in place; an error
// stops the run.
type Node[S any] interface {
	Name() string
	Run(ctx context.Context, state *S) error
}

// Predicate decides whether a conditional edge is taken. It is evaluated on
// the state after the source node ran and must not mutate it.
type Predicate[S any] func(state *S) bool

type funcNode[S any] struct {
	name string
	run  func(ctx context.Context, state *S) error
}

func (node *funcNode[S]) Name() string { return node.name }

func (node *funcNode[S]) Run(ctx context.Context, state *S) error { return node.run(ctx, state) }

// NodeFunc builds a Node from a name and a function.
func NodeFunc[S any](name string, run func(ctx context.Context, state *S) error) Node[S] {
	return &funcNode[S]{name: name, run: run}
}

// passNode is used for the start and end nodes.
type passNode[S any] struct {
	name string
}

func (node *passNode[S]) Name() string { return node.name }

func (node *passNode[S]) Run(context.Context, *S) error { return nil }

type edge[S any] struct {
	from      NodeID
	to        NodeID
	predicate Predicate[S]
}

// Graph is an arena of nodes addressed by NodeID plus a flat edge list. It
// is built from one goroutine; once built, Run may be called concurrently
// as long as the nodes themselves allow it.
type Graph[S any] struct {
	nodes []Node[S]
	edges []edge[S]
	start NodeID
	end   NodeID

	config *graphConfig

	// buildErrors accumulates wiring mistakes reported by Validate.
	buildErrors []error
}

// New creates a graph holding only the start and end nodes.
func New[S any](opts ...Option) *Graph[S] {
	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	graph := &Graph[S]{config: config}
	graph.start = graph.AddNode(&passNode[S]{name: StartNodeName})
	graph.end = graph.AddNode(&passNode[S]{name: EndNodeName})
	return graph
}

// Start returns the handle of the start node.
func (graph *Graph[S]) Start() NodeID { return graph.start }

// End returns the handle of the end node.
func (graph *Graph[S]) End() NodeID { return graph.end }

// AddNode registers node and returns its handle. A nil node is recorded as
// a build error.
func (graph *Graph[S]) AddNode(node Node[S]) NodeID {
	id := NodeID(len(graph.nodes))
	if node == nil {
		graph.buildErrors = append(graph.buildErrors, fmt.Errorf("node %d must not be nil", id))
		node = &passNode[S]{name: fmt.Sprintf("invalid-%d", id)}
	}
	graph.nodes = append(graph.nodes, node)
	return id
}

// NodeName returns the name of the node behind id, or "" for an unknown
// handle.
func (graph *Graph[S]) NodeName(id NodeID) string {
	if !graph.valid(id) {
		return ""
	}
	return graph.nodes[id].Name()
}

// Len returns the number of nodes including start and end.
func (graph *Graph[S]) Len() int {
	return len(graph.nodes)
}

// AddEdge adds a plain edge, always taken when reached in the scan.
func (graph *Graph[S]) AddEdge(from, to NodeID) {
	graph.addEdge(from, to, nil, false)
}

// AddConditionalEdge adds an edge taken only when predicate holds.
func (graph *Graph[S]) AddConditionalEdge(from, to NodeID, predicate Predicate[S]) {
	graph.addEdge(from, to, predicate, true)
}

// AddStartEdge adds a plain edge from the start node.
func (graph *Graph[S]) AddStartEdge(to NodeID) {
	graph.AddEdge(graph.start, to)
}

// AddEndEdge adds a plain edge to the end node.
func (graph *Graph[S]) AddEndEdge(from NodeID) {
	graph.AddEdge(from, graph.end)
}

// AddConditionalEndEdge adds an edge to the end node taken when predicate
// holds.
func (graph *Graph[S]) AddConditionalEndEdge(from NodeID, predicate Predicate[S]) {
	graph.AddConditionalEdge(from, graph.end, predicate)
}

func (graph *Graph[S]) addEdge(from, to NodeID, predicate Predicate[S], conditional bool) {
	switch {
	case !graph.valid(from):
		graph.buildErrors = append(graph.buildErrors, fmt.Errorf("edge source %d: %w", from, ErrUnknownNode))
	case !graph.valid(to):
		graph.buildErrors = append(graph.buildErrors, fmt.Errorf("edge target %d: %w", to, ErrUnknownNode))
	case from == graph.end:
		graph.buildErrors = append(graph.buildErrors, fmt.Errorf("edge to %q leaves the end node", graph.nodes[to].Name()))
	case conditional && predicate == nil:
		graph.buildErrors = append(graph.buildErrors, fmt.Errorf("conditional edge %q -> %q has a nil predicate",
			graph.nodes[from].Name(), graph.nodes[to].Name()))
	default:
		graph.edges = append(graph.edges, edge[S]{from: from, to: to, predicate: predicate})
	}
}

func (graph *Graph[S]) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(graph.nodes)
}

// Validate reports every wiring mistake recorded while building.
func (graph *Graph[S]) Validate() error {
	if len(graph.buildErrors) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(graph.buildErrors...))
}

// next returns the first applicable outgoing edge target of from.
func (graph *Graph[S]) next(from NodeID, state *S) (NodeID, bool) {
	for _, candidate := range graph.edges {
		if candidate.from != from {
			continue
		}
		if candidate.predicate == nil || candidate.predicate(state) {
			return candidate.to, true
		}
	}
	return 0, false
}
