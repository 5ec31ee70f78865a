package agent

import (
	"context"

	"github.com/leofalp/fungraph/patterns/graph"
	"github.com/leofalp/fungraph/providers/ai"
)

type node[S any] struct {
	name   string
	agent  *Agent
	input  func(state *S) ai.Messages
	output func(state *S, response *Response, err error) error
}

// NewNode adapts agent to a graph node. input builds the history from the
// state; output stores the response in the state and decides whether an
// agent error fails the node. A nil output fails the node on any agent
// error.
//
// Example:
//
//	answer := g.AddNode(agent.NewNode("answer", assistant,
//	    func(s *State) ai.Messages { return s.History },
//	    func(s *State, response *agent.Response, err error) error {
//	        if err != nil {
//	            return err
//	        }
//	        s.History.Add(ai.NewAIMessage(response.FinalAnswer))
//	        return nil
//	    },
//	))
func NewNode[S any](name string, agent *Agent, input func(state *S) ai.Messages, output func(state *S, response *Response, err error) error) graph.Node[S] {
	return &node[S]{name: name, agent: agent, input: input, output: output}
}

func (n *node[S]) Name() string { return n.name }

func (n *node[S]) Run(ctx context.Context, state *S) error {
	response, err := n.agent.Invoke(ctx, n.input(state))
	if n.output == nil {
		return err
	}
	return n.output(state, response, err)
}
