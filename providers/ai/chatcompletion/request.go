package chatcompletion

import (
	"github.com/leofalp/fungraph/providers/ai"
)

// NewRequest encodes messages into a request for model. Tools are attached
// with tool_choice "auto" only when the turn advertises at least one tool,
// and streaming requests ask for a trailing usage chunk.
func NewRequest(model string, messages ai.Messages, options ai.CallOptions, stream bool) Request {
	if options.Model != "" {
		model = options.Model
	}

	request := Request{
		Model:       model,
		Messages:    make([]Message, 0, len(messages.Messages)),
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}

	for _, message := range messages.Messages {
		request.Messages = append(request.Messages, messageToWire(message))
	}

	if len(messages.Tools) > 0 {
		request.Tools = make([]Tool, 0, len(messages.Tools))
		for _, tool := range messages.Tools {
			request.Tools = append(request.Tools, Tool{
				Type: ai.ToolCallTypeFunction,
				Function: FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}
		request.ToolChoice = ToolChoiceAuto
	}

	if stream {
		request.Stream = true
		request.StreamOptions = &StreamOptions{IncludeUsage: true}
	}

	if options.JSONResponse {
		request.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	return request
}

// messageToWire maps a message to its wire form. Roles already use the wire
// vocabulary (system, user, assistant, tool).
func messageToWire(message ai.Message) Message {
	wire := Message{
		Role:       string(message.Role),
		Content:    message.Content,
		Name:       message.Name,
		ToolCallID: message.ToolCallID,
	}
	for _, toolCall := range message.ToolCalls {
		callType := toolCall.Type
		if callType == "" {
			callType = ai.ToolCallTypeFunction
		}
		wire.ToolCalls = append(wire.ToolCalls, ToolCall{
			ID:   toolCall.ID,
			Type: callType,
			Function: FunctionCall{
				Name:      toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
			},
		})
	}
	return wire
}
