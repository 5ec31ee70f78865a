// Package graph runs workflows expressed as a directed graph of nodes over a
// shared, user-defined state.
//
// A [Graph] always contains a start node and an end node, created by [New].
// Nodes are added with [Graph.AddNode], which returns a [NodeID] handle used
// to wire edges. Edges are plain or conditional; conditional edges carry a
// [Predicate] evaluated on the state after the source node has run.
//
// Execution starts at the start node. After a node runs, its outgoing edges
// are scanned in insertion order and the first one that applies is taken: a
// plain edge always applies, a conditional edge applies when its predicate
// returns true. The run succeeds when the end node is reached. Cycles are
// allowed, so loops are built with conditional edges and bounded by
// [WithMaxSteps].
//
// Example:
//
//	g := graph.New[State]()
//	draft := g.AddNode(graph.NodeFunc[State]("draft", writeDraft))
//	review := g.AddNode(graph.NodeFunc[State]("review", reviewDraft))
//	g.AddStartEdge(draft)
//	g.AddEdge(draft, review)
//	g.AddConditionalEndEdge(review, func(s *State) bool { return s.Approved })
//	g.AddEdge(review, draft)
//
//	final, err := g.Run(ctx, State{Topic: "graphs"})
//
// A run that stops at a node with no applicable edge returns the state
// reached so far together with an error wrapping [ErrDeadEnd].
package graph
