package openai

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/ai/chatcompletion"
)

// buildParams converts messages and options into SDK request parameters.
func buildParams(model string, messages ai.Messages, options ai.CallOptions, stream bool) (openai.ChatCompletionNewParams, error) {
	if options.Model != "" {
		model = options.Model
	}

	params := openai.ChatCompletionNewParams{
		Messages: buildMessages(messages.Messages),
		Model:    model,
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if options.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*options.MaxTokens))
	}
	if options.JSONResponse {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if stream {
		params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}
	}

	for _, tool := range messages.Tools {
		parameters, err := schemaToMap(tool.Parameters)
		if err != nil {
			return params, fmt.Errorf("tool %q: %w", tool.Name, err)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  parameters,
			},
		})
	}

	return params, nil
}

func buildMessages(messages []ai.Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, message := range messages {
		switch message.Role {
		case ai.RoleSystem:
			converted = append(converted, openai.SystemMessage(message.Content))
		case ai.RoleAssistant:
			if len(message.ToolCalls) == 0 {
				converted = append(converted, openai.AssistantMessage(message.Content))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(message.ToolCalls))
			for _, toolCall := range message.ToolCalls {
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   toolCall.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      toolCall.Function.Name,
						Arguments: toolCall.Function.Arguments,
					},
				})
			}
			converted = append(converted, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case ai.RoleTool:
			converted = append(converted, openai.ToolMessage(message.Content, message.ToolCallID))
		default:
			converted = append(converted, openai.UserMessage(message.Content))
		}
	}
	return converted
}

// schemaToMap re-encodes a schema as the generic map the SDK expects.
func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	if schema == nil {
		return map[string]any{"type": jsonschema.TypeObject, "properties": map[string]any{}}, nil
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	var parameters map[string]any
	if err := json.Unmarshal(encoded, &parameters); err != nil {
		return nil, fmt.Errorf("failed to convert parameters: %w", err)
	}
	return parameters, nil
}

// completionToResponse maps an SDK completion to the shared wire model.
func completionToResponse(completion *openai.ChatCompletion) *chatcompletion.Response {
	response := &chatcompletion.Response{
		ID:    completion.ID,
		Model: completion.Model,
	}
	for _, choice := range completion.Choices {
		content := choice.Message.Content
		converted := chatcompletion.Choice{
			Index:        int(choice.Index),
			FinishReason: choice.FinishReason,
			Message: chatcompletion.ResponseMessage{
				Role:    "assistant",
				Content: &content,
			},
		}
		for _, toolCall := range choice.Message.ToolCalls {
			converted.Message.ToolCalls = append(converted.Message.ToolCalls, chatcompletion.ToolCall{
				ID:   toolCall.ID,
				Type: "function",
				Function: chatcompletion.FunctionCall{
					Name:      toolCall.Function.Name,
					Arguments: toolCall.Function.Arguments,
				},
			})
		}
		response.Choices = append(response.Choices, converted)
	}
	if completion.Usage.TotalTokens > 0 {
		response.Usage = convertUsage(completion.Usage)
	}
	return response
}

// chunkToStreamChunk maps an SDK chunk to the shared wire model.
func chunkToStreamChunk(chunk *openai.ChatCompletionChunk) *chatcompletion.StreamChunk {
	converted := &chatcompletion.StreamChunk{
		ID:    chunk.ID,
		Model: chunk.Model,
	}
	for _, choice := range chunk.Choices {
		streamChoice := chatcompletion.StreamChoice{
			Index:        int(choice.Index),
			FinishReason: choice.FinishReason,
			Delta: chatcompletion.Delta{
				Content: choice.Delta.Content,
			},
		}
		for _, toolCall := range choice.Delta.ToolCalls {
			streamChoice.Delta.ToolCalls = append(streamChoice.Delta.ToolCalls, chatcompletion.ToolCallDelta{
				Index: int(toolCall.Index),
				ID:    toolCall.ID,
				Function: chatcompletion.FunctionCall{
					Name:      toolCall.Function.Name,
					Arguments: toolCall.Function.Arguments,
				},
			})
		}
		converted.Choices = append(converted.Choices, streamChoice)
	}
	if chunk.Usage.TotalTokens > 0 {
		converted.Usage = convertUsage(chunk.Usage)
	}
	return converted
}

func convertUsage(usage openai.CompletionUsage) *chatcompletion.Usage {
	return &chatcompletion.Usage{
		PromptTokens:     int(usage.PromptTokens),
		CompletionTokens: int(usage.CompletionTokens),
		TotalTokens:      int(usage.TotalTokens),
	}
}
