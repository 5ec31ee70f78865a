package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/fungraph/providers/ai"
)

func newAskCommand(application *app) *cobra.Command {
	var stream bool

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("stream") {
				stream = application.config.Stream
			}
			question := strings.Join(args, " ")
			return application.ask(cmd.Context(), cmd.OutOrStdout(), question, stream)
		},
	}
	askCmd.Flags().BoolVarP(&stream, "stream", "s", false, "print the answer as it is generated")
	return askCmd
}

func (application *app) ask(ctx context.Context, out io.Writer, question string, stream bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Without tools there is a single model call, so fragments can be
	// printed as they arrive.
	if stream && !application.config.Tools.Enabled() && len(application.config.MCPServers) == 0 {
		provider, err := application.newProvider()
		if err != nil {
			return err
		}
		return streamAnswer(ctx, out, provider, application.question(question))
	}

	assistant, closeTools, err := application.newAgent(ctx, stream)
	if err != nil {
		return err
	}
	defer closeTools()

	response, err := assistant.Invoke(ctx, ai.NewMessagesBuilder().AddHumanMessage(question).Build())
	if err != nil {
		return err
	}
	return newRenderer(out).Render(response.FinalAnswer)
}

// question builds the request for a tool-less call.
func (application *app) question(text string) ai.Messages {
	builder := ai.NewMessagesBuilder()
	if prompt := application.config.SystemPrompt; prompt != "" {
		builder.AddSystemMessage(prompt)
	}
	return builder.AddHumanMessage(text).Build()
}

func streamAnswer(ctx context.Context, out io.Writer, provider ai.Provider, messages ai.Messages) error {
	stream, err := provider.InvokeStream(ctx, messages)
	if err != nil {
		return err
	}
	defer stream.Close()

	for result, err := range stream.Iter() {
		if err != nil {
			return err
		}
		generated, ok := result.(*ai.GenerateResult)
		if !ok {
			return fmt.Errorf("%w: unexpected %T in a tool-less stream", ai.ErrProtocol, result)
		}
		if _, err := io.WriteString(out, generated.Text); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out)
	return err
}
