package chatcompletion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/fungraph/providers/ai"
)

// ToolCallIDPrefix prefixes identifiers generated for tool calls that the
// server sent without an id.
const ToolCallIDPrefix = "call_"

// DecodeResponse parses a complete chat-completion body.
func DecodeResponse(body []byte) (ai.LLMResult, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: invalid chat completion: %w", ai.ErrDecode, err)
	}
	return ResultFromResponse(&response)
}

// ResultFromResponse maps the first choice of a response to a result. A
// choice that finished with "tool_calls", or that carries tool calls, maps
// to a ToolCallResult for its first call. Otherwise its content maps to a
// GenerateResult. A response without choices, or a choice with neither
// content nor tool calls, is a protocol error.
func ResultFromResponse(response *Response) (ai.LLMResult, error) {
	if response == nil || len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ai.ErrProtocol)
	}

	choice := response.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		toolCall := choice.Message.ToolCalls[0]
		return NewToolCallResult(toolCall.ID, toolCall.Function.Name, toolCall.Function.Arguments)
	}
	if choice.FinishReason == FinishReasonToolCalls {
		return nil, fmt.Errorf("%w: finish reason %q without tool calls", ai.ErrProtocol, choice.FinishReason)
	}

	if choice.Message.Content == nil {
		if choice.Message.Refusal != nil {
			return nil, fmt.Errorf("%w: model refused: %s", ai.ErrProtocol, *choice.Message.Refusal)
		}
		return nil, fmt.Errorf("%w: choice has neither content nor tool calls", ai.ErrProtocol)
	}

	return &ai.GenerateResult{
		Text:  *choice.Message.Content,
		Usage: convertUsage(response.Usage),
	}, nil
}

// NewToolCallResult builds an ai.ToolCallResult from wire fields, parsing
// the arguments and generating an id when the server omitted one.
func NewToolCallResult(id string, name string, rawArguments string) (*ai.ToolCallResult, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tool call without function name", ai.ErrProtocol)
	}
	arguments, err := ParseArguments(rawArguments)
	if err != nil {
		return nil, fmt.Errorf("tool call %q: %w", name, err)
	}
	if id == "" {
		id = ToolCallIDPrefix + uuid.NewString()
	}
	return ai.NewToolCallResult(id, name, arguments, rawArguments), nil
}

// ParseArguments decodes a tool call's JSON arguments. Empty input is an
// empty object. Malformed JSON, which models produce now and then, is
// repaired before giving up.
func ParseArguments(rawArguments string) (map[string]any, error) {
	trimmed := strings.TrimSpace(rawArguments)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	var arguments map[string]any
	err := json.Unmarshal([]byte(trimmed), &arguments)
	if err == nil {
		if arguments == nil {
			arguments = map[string]any{}
		}
		return arguments, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(trimmed)
	if repairErr != nil {
		return nil, fmt.Errorf("%w: invalid tool arguments: %w", ai.ErrDecode, err)
	}
	if err := json.Unmarshal([]byte(repaired), &arguments); err != nil {
		return nil, fmt.Errorf("%w: invalid tool arguments after repair: %w", ai.ErrDecode, err)
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	return arguments, nil
}

func convertUsage(usage *Usage) *ai.Usage {
	if usage == nil {
		return nil
	}
	return &ai.Usage{
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}
}
