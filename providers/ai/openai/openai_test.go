package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/observability/logging"
)

// --- Helpers ---

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	noRetries := 0
	provider, err := New(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: &noRetries,
	}, WithHTTPClient(server.Client()), WithLogger(logging.Discard()))
	require.NoError(t, err)
	return provider
}

func writeSSE(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func weatherMessages() ai.Messages {
	return ai.NewMessagesBuilder().
		AddSystemMessage("be brief").
		AddHumanMessage("weather in tokyo?").
		AddTools(ai.ToolDescription{
			Name:        "get_weather",
			Description: "Get the weather",
			Parameters:  jsonschema.Object(map[string]*jsonschema.Schema{"location": jsonschema.String("city")}, "location"),
		}).
		Build()
}

// --- Tests ---

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

// TestGenerate_SendsMessagesAndTools verifies the SDK request body and the
// decoded tool call.
func TestGenerate_SendsMessagesAndTools(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])

		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "user", messages[1].(map[string]any)["role"])

		tools := body["tools"].([]any)
		require.Len(t, tools, 1)
		function := tools[0].(map[string]any)["function"].(map[string]any)
		assert.Equal(t, "get_weather", function["name"])
		assert.Equal(t, "object", function["parameters"].(map[string]any)["type"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
			"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
				"role": "assistant", "content": null,
				"tool_calls": [{"id": "call_1", "type": "function",
					"function": {"name": "get_weather", "arguments": "{\"location\":\"tokyo\"}"}}]
			}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	})

	result, err := provider.Generate(context.Background(), weatherMessages())
	require.NoError(t, err)

	toolCall, ok := result.(*ai.ToolCallResult)
	require.True(t, ok, "expected tool call, got %T", result)
	assert.Equal(t, "call_1", toolCall.ID)
	assert.Equal(t, map[string]any{"location": "tokyo"}, toolCall.Arguments)
}

// TestGenerate_ToolRoundTripMessages verifies assistant tool calls and tool
// answers are encoded with their correlation id.
func TestGenerate_ToolRoundTripMessages(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []map[string]any `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 3)

		assistant := body.Messages[1]
		assert.Equal(t, "assistant", assistant["role"])
		toolCalls := assistant["tool_calls"].([]any)
		require.Len(t, toolCalls, 1)
		assert.Equal(t, "call_1", toolCalls[0].(map[string]any)["id"])

		assert.Equal(t, "tool", body.Messages[2]["role"])
		assert.Equal(t, "call_1", body.Messages[2]["tool_call_id"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Sunny."}}]}`)
	})

	call := ai.NewToolCallResult("call_1", "get_weather", map[string]any{"location": "tokyo"}, `{"location":"tokyo"}`)
	messages := ai.Messages{}
	messages.Add(ai.NewHumanMessage("weather?"), call.Message, ai.NewToolMessage("sunny, 25C", "call_1"))

	result, err := provider.Invoke(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "Sunny.", result.(*ai.GenerateResult).Text)
}

func TestGenerate_StatusError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
	})

	_, err := provider.Generate(context.Background(), weatherMessages())
	var statusError *ai.StatusError
	require.ErrorAs(t, err, &statusError)
	assert.Equal(t, http.StatusBadRequest, statusError.StatusCode)
	assert.ErrorIs(t, err, ai.ErrTransport)
}

// TestInvokeStream_TextAndUsage streams two fragments plus a usage chunk.
func TestInvokeStream_TextAndUsage(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"he"}}]}`)
		writeSSE(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"llo"},"finish_reason":"stop"}]}`)
		writeSSE(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
		writeSSE(w, `[DONE]`)
	})

	stream, err := provider.InvokeStream(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	require.NoError(t, err)

	result, err := stream.Collect()
	require.NoError(t, err)

	generated := result.(*ai.GenerateResult)
	assert.Equal(t, "hello", generated.Text)
	require.NotNil(t, generated.Usage)
	assert.Equal(t, 3, generated.Usage.TotalTokens)
}

// TestInvokeStream_ToolCall verifies the SDK chunks feed the shared
// assembler.
func TestInvokeStream_ToolCall(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_2","type":"function","function":{"name":"get_weather","arguments":"{\"location\""}}]}}]}`)
		writeSSE(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":":\"tokyo\"}"}}]},"finish_reason":"tool_calls"}]}`)
		writeSSE(w, `[DONE]`)
	})

	stream, err := provider.InvokeStream(context.Background(), weatherMessages())
	require.NoError(t, err)

	result, err := stream.Collect()
	require.NoError(t, err)

	toolCall := result.(*ai.ToolCallResult)
	assert.Equal(t, "call_2", toolCall.ID)
	assert.Equal(t, "get_weather", toolCall.Name)
	assert.Equal(t, map[string]any{"location": "tokyo"}, toolCall.Arguments)
}

// TestInvokeStream_RequestFailureIsErrorItem verifies failures of the lazily
// opened connection surface as stream items.
func TestInvokeStream_RequestFailureIsErrorItem(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	})

	stream, err := provider.InvokeStream(context.Background(), weatherMessages())
	require.NoError(t, err)

	_, err = stream.Collect()
	var statusError *ai.StatusError
	require.ErrorAs(t, err, &statusError)
	assert.Equal(t, http.StatusUnauthorized, statusError.StatusCode)
}

// TestNew_NilLoggerFallsBackToDefault verifies WithLogger(nil) does not
// leave the provider without a logger.
func TestNew_NilLoggerFallsBackToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","model":"test-model","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)
	}))
	t.Cleanup(server.Close)

	noRetries := 0
	provider, err := New(Config{APIKey: "test-key", BaseURL: server.URL, MaxRetries: &noRetries},
		WithHTTPClient(server.Client()), WithLogger(nil))
	require.NoError(t, err)

	result, err := provider.Generate(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	require.NoError(t, err)
	assert.Equal(t, "ok", result.(*ai.GenerateResult).Text)
}
