package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
	"github.com/leofalp/fungraph/providers/tool"
)

// Agent drives the tool-calling loop for one provider. It is safe for
// concurrent use when its provider is.
type Agent struct {
	provider      ai.Provider
	catalog       *tool.Catalog
	systemPrompt  string
	maxToolRounds int
	streaming     bool
	logger        *slog.Logger
	metrics       *metrics.Collector
}

// New creates an agent over provider.
//
// Example:
//
//	weatherAgent := agent.New(provider,
//	    agent.WithSystemPrompt("Answer in one sentence."),
//	    agent.WithTools(weatherTool),
//	)
//	response, err := weatherAgent.Invoke(ctx, messages)
func New(provider ai.Provider, opts ...Option) *Agent {
	agent := &Agent{
		provider:      provider,
		catalog:       tool.NewCatalog(),
		maxToolRounds: DefaultMaxToolRounds,
		logger:        logging.OrDefault(nil),
	}
	for _, opt := range opts {
		opt(agent)
	}
	return agent
}

// Catalog returns the agent's tool table.
func (agent *Agent) Catalog() *tool.Catalog {
	return agent.catalog
}

// Chat runs one turn for a single user message and returns its
// conversations.
func (agent *Agent) Chat(ctx context.Context, text string) ([]Conversation, error) {
	response, err := agent.Invoke(ctx, ai.NewMessagesBuilder().AddHumanMessage(text).Build())
	return response.Conversations, err
}

// Invoke runs one turn over history. The request sent to the provider is
// the system prompt, then history, with the catalog's tools sorted by name.
// When the catalog is empty the tools already attached to history are kept.
//
// The returned Response is never nil. On error its Outcome is
// OutcomeAborted and it holds the conversations recorded so far.
func (agent *Agent) Invoke(ctx context.Context, history ai.Messages) (*Response, error) {
	request := agent.initialRequest(history)
	response := &Response{Outcome: OutcomeAborted}
	rounds := 0
	defer func() {
		agent.metrics.ObserveAgentRounds(rounds)
	}()

	for {
		result, err := agent.call(ctx, request)
		if err != nil {
			agent.logger.WarnContext(ctx, "agent provider call failed",
				slog.Int(logging.AttrAgentRound, rounds),
				slog.Any(logging.AttrError, err),
			)
			return response, fmt.Errorf("agent round %d: %w", rounds, err)
		}
		response.Conversations = append(response.Conversations, Conversation{
			Request:  request.Clone(),
			Response: result,
		})

		switch result := result.(type) {
		case *ai.GenerateResult:
			response.FinalAnswer = result.Text
			response.Outcome = OutcomeDone
			agent.logger.DebugContext(ctx, "agent turn completed",
				slog.Int(logging.AttrAgentRounds, rounds),
				slog.Int(logging.AttrAgentConversations, len(response.Conversations)),
			)
			return response, nil

		case *ai.ToolCallResult:
			if rounds >= agent.maxToolRounds {
				return response, fmt.Errorf("%w: model requested %q after %d rounds", ErrMaxToolRounds, result.Name, rounds)
			}
			rounds++

			request.Add(result.Message)
			output, err := agent.runTool(ctx, result)
			if err != nil {
				return response, err
			}
			request.Add(ai.NewToolMessage(output, result.ID))

		default:
			return response, fmt.Errorf("%w: unexpected result type %T", ai.ErrProtocol, result)
		}
	}
}

func (agent *Agent) initialRequest(history ai.Messages) ai.Messages {
	request := ai.Messages{}
	if agent.systemPrompt != "" {
		request.Add(ai.NewSystemMessage(agent.systemPrompt))
	}

	cloned := history.Clone()
	request.Add(cloned.Messages...)

	request.Tools = cloned.Tools
	if agent.catalog.Size() > 0 {
		request.Tools = agent.catalog.Descriptions()
	}
	return request
}

func (agent *Agent) call(ctx context.Context, request ai.Messages) (ai.LLMResult, error) {
	if !agent.streaming {
		return agent.provider.Invoke(ctx, request)
	}

	stream, err := agent.provider.InvokeStream(ctx, request)
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

func (agent *Agent) runTool(ctx context.Context, call *ai.ToolCallResult) (string, error) {
	agent.logger.DebugContext(ctx, "agent calling tool",
		slog.String(logging.AttrToolName, call.Name),
		slog.String(logging.AttrToolCallID, call.ID),
		slog.String(logging.AttrToolArguments, call.RawArguments),
	)

	start := time.Now()
	output, err := agent.catalog.Call(ctx, call.Name, call.Arguments)
	duration := time.Since(start)
	agent.metrics.ObserveToolCall(call.Name, duration, err)

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, tool.ErrToolNotFound) {
			level = slog.LevelError
		}
		agent.logger.Log(ctx, level, "agent tool call failed",
			slog.String(logging.AttrToolName, call.Name),
			slog.Duration(logging.AttrDuration, duration),
			slog.Any(logging.AttrError, err),
		)
		return "", fmt.Errorf("agent tool call %s: %w", call.ID, err)
	}

	agent.logger.DebugContext(ctx, "agent tool returned",
		slog.String(logging.AttrToolName, call.Name),
		slog.Duration(logging.AttrDuration, duration),
		slog.Int(logging.AttrToolOutputBytes, len(output)),
	)
	return output, nil
}
