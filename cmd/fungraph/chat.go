package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leofalp/fungraph/patterns/agent"
	"github.com/leofalp/fungraph/patterns/graph"
	"github.com/leofalp/fungraph/providers/ai"
)

// maxChatSteps lets a session run for many turns; each turn takes three
// steps.
const maxChatSteps = 1 << 20

var quitCommands = map[string]bool{"/quit": true, "/exit": true}

// chatState is the state flowing through the chat graph.
type chatState struct {
	History ai.Messages
	Input   string
	Answer  string
	Err     error
	Quit    bool
	Turns   int
}

// lineReader is the part of a readline instance the input node uses.
type lineReader interface {
	Readline() (string, error)
}

func newChatCommand(application *app) *cobra.Command {
	var stream bool

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Start an interactive chat session. Type /quit or press Ctrl-D to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if !cmd.Flags().Changed("stream") {
				stream = application.config.Stream
			}

			assistant, closeTools, err := application.newAgent(ctx, stream)
			if err != nil {
				return err
			}
			defer closeTools()

			reader, err := readline.New("> ")
			if err != nil {
				return fmt.Errorf("failed to open terminal input: %w", err)
			}
			defer reader.Close()

			out := cmd.OutOrStdout()
			session := newChatGraph(assistant, reader, newRenderer(out), out,
				graph.WithLogger(application.logger),
				graph.WithMetrics(application.metrics),
			)
			final, err := session.Run(ctx, chatState{})
			application.logger.Debug("chat session ended", "turns", final.Turns)
			return err
		},
	}
	chatCmd.Flags().BoolVarP(&stream, "stream", "s", false, "use the streaming endpoint")
	return chatCmd
}

// newChatGraph wires input -> answer -> output -> input. The session ends
// when the input node sets Quit.
func newChatGraph(assistant *agent.Agent, reader lineReader, render *renderer, out io.Writer, opts ...graph.Option) *graph.Graph[chatState] {
	session := graph.New[chatState](append([]graph.Option{graph.WithMaxSteps(maxChatSteps)}, opts...)...)

	input := session.AddNode(graph.NodeFunc("input", func(ctx context.Context, state *chatState) error {
		line, err := reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			state.Quit = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		state.Input = strings.TrimSpace(line)
		if quitCommands[state.Input] {
			state.Quit = true
			return nil
		}
		if state.Input != "" {
			state.History.Add(ai.NewHumanMessage(state.Input))
		}
		return nil
	}))

	answer := session.AddNode(agent.NewNode("answer", assistant,
		func(state *chatState) ai.Messages { return state.History },
		func(state *chatState, response *agent.Response, err error) error {
			state.Answer, state.Err = "", nil
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// Forget the failed question so the history stays alternating.
				state.History.Messages = state.History.Messages[:len(state.History.Messages)-1]
				state.Err = err
				return nil
			}
			state.Answer = response.FinalAnswer
			state.History.Add(ai.NewAIMessage(response.FinalAnswer))
			state.Turns++
			return nil
		},
	))

	output := session.AddNode(graph.NodeFunc("output", func(ctx context.Context, state *chatState) error {
		if state.Err != nil {
			_, err := fmt.Fprintf(out, "error: %v\n", state.Err)
			return err
		}
		return render.Render(state.Answer)
	}))

	session.AddStartEdge(input)
	session.AddConditionalEndEdge(input, func(state *chatState) bool { return state.Quit })
	session.AddConditionalEdge(input, input, func(state *chatState) bool { return state.Input == "" })
	session.AddEdge(input, answer)
	session.AddEdge(answer, output)
	session.AddEdge(output, input)
	return session
}
