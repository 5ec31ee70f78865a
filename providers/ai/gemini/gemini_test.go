package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/ai/chatcompletion"
	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
)

// --- Helpers ---

func newTestProvider(t *testing.T, handler http.HandlerFunc, options ...ConfigOption) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config, err := NewConfig(append([]ConfigOption{WithAPIKey("test-key"), WithAPIBase(server.URL)}, options...)...)
	require.NoError(t, err)

	provider, err := New(config,
		WithHTTPClient(server.Client()),
		WithLogger(logging.Discard()),
		WithMetrics(metrics.NewCollector(prometheus.NewRegistry())),
	)
	require.NoError(t, err)
	return provider
}

func decodeRequest(t *testing.T, r *http.Request) chatcompletion.Request {
	t.Helper()
	var request chatcompletion.Request
	require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
	return request
}

func writeSSE(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func writeSSEDone(w http.ResponseWriter) {
	writeSSE(w, "[DONE]")
}

func weatherMessages() ai.Messages {
	return ai.NewMessagesBuilder().
		AddHumanMessage("What is the weather in Tokyo?").
		AddTools(ai.ToolDescription{
			Name:        "get_weather",
			Description: "Get the weather",
			Parameters: jsonschema.Object(map[string]*jsonschema.Schema{
				"location": jsonschema.String("city"),
			}, "location"),
		}).
		Build()
}

// --- Tests ---

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

// TestGenerate_ToolCall sends a turn with one tool and receives a
// tool_calls answer for get_weather.
func TestGenerate_ToolCall(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		request := decodeRequest(t, r)
		assert.Equal(t, "gemini-1.5-flash", request.Model)
		assert.Equal(t, "auto", request.ToolChoice)
		require.Len(t, request.Tools, 1)
		assert.Equal(t, "get_weather", request.Tools[0].Function.Name)
		assert.False(t, request.Stream)

		fmt.Fprint(w, `{
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {"role": "assistant", "tool_calls": [{
					"id": "call_1", "type": "function",
					"function": {"name": "get_weather", "arguments": "{\"location\":\"tokyo\"}"}
				}]}
			}]
		}`)
	})

	result, err := provider.Generate(context.Background(), weatherMessages())
	require.NoError(t, err)

	toolCall, ok := result.(*ai.ToolCallResult)
	require.True(t, ok, "expected tool call, got %T", result)
	assert.Equal(t, "call_1", toolCall.ID)
	assert.Equal(t, "get_weather", toolCall.Name)
	assert.Equal(t, map[string]any{"location": "tokyo"}, toolCall.Arguments)
}

func TestInvoke_Generate(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		request := decodeRequest(t, r)
		assert.Empty(t, request.Tools)
		assert.Empty(t, request.ToolChoice)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Sunny."},"finish_reason":"stop"}],"usage":{"total_tokens":9}}`)
	})

	result, err := provider.Invoke(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	require.NoError(t, err)

	generated := result.(*ai.GenerateResult)
	assert.Equal(t, "Sunny.", generated.Text)
	assert.Equal(t, 9, generated.Usage.TotalTokens)
}

// TestGenerate_JSONResponseAndOptions verifies config JSON mode and call
// options reach the request body.
func TestGenerate_JSONResponseAndOptions(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		request := decodeRequest(t, r)
		require.NotNil(t, request.ResponseFormat)
		assert.Equal(t, "json_object", request.ResponseFormat.Type)
		assert.Equal(t, "gemini-2.0-flash-001", request.Model)
		require.NotNil(t, request.Temperature)
		assert.InDelta(t, 0.1, *request.Temperature, 1e-9)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{}"}}]}`)
	}, WithJSONResponse())

	temperature := 0.1
	provider.AddOptions(ai.CallOptions{Model: string(ModelGemini20Flash), Temperature: &temperature})

	_, err := provider.Generate(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("json please").Build())
	require.NoError(t, err)
}

func TestGenerate_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantErr: ai.ErrTransport},
		{name: "malformed body", status: http.StatusOK, body: `{"choices":`, wantErr: ai.ErrDecode},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ai.ErrProtocol},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				fmt.Fprint(w, testCase.body)
			})

			_, err := provider.Generate(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

// TestInvokeStream_TextFragments streams "he" + "llo" and expects two
// fragments that collect to "hello".
func TestInvokeStream_TextFragments(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		request := decodeRequest(t, r)
		assert.True(t, request.Stream)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, `{"choices":[{"delta":{"role":"assistant","content":"he"}}]}`)
		writeSSE(w, `{"choices":[{"delta":{"content":"llo"}}]}`)
		writeSSEDone(w)
	})

	stream, err := provider.InvokeStream(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	require.NoError(t, err)

	var fragments []string
	for result, err := range stream.Iter() {
		require.NoError(t, err)
		fragments = append(fragments, result.(*ai.GenerateResult).Text)
	}
	assert.Equal(t, []string{"he", "llo"}, fragments)
	assert.Equal(t, "hello", strings.Join(fragments, ""))
}

// TestInvokeStream_ToolCallAcrossChunks verifies fragmented tool call
// arguments are reassembled into one call.
func TestInvokeStream_ToolCallAcrossChunks(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, `{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_7","type":"function","function":{"name":"get_weather","arguments":""}}]}}]}`)
		writeSSE(w, `{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"loc"}}]}}]}`)
		writeSSE(w, `{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"ation\":\"tokyo\"}"}}]},"finish_reason":"tool_calls"}]}`)
		writeSSE(w, `{"choices":[],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`)
		writeSSEDone(w)
	})

	stream, err := provider.InvokeStream(context.Background(), weatherMessages())
	require.NoError(t, err)

	result, err := stream.Collect()
	require.NoError(t, err)

	toolCall := result.(*ai.ToolCallResult)
	assert.Equal(t, "call_7", toolCall.ID)
	assert.Equal(t, map[string]any{"location": "tokyo"}, toolCall.Arguments)
}

func TestInvokeStream_StatusErrorBeforeStream(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := provider.InvokeStream(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	var statusError *ai.StatusError
	require.ErrorAs(t, err, &statusError)
	assert.Equal(t, http.StatusTooManyRequests, statusError.StatusCode)
}

// TestInvokeStream_AbandonedStreamClosesConnection verifies breaking out of
// the iteration releases the server-side request.
func TestInvokeStream_AbandonedStreamClosesConnection(t *testing.T) {
	serverDone := make(chan struct{})
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		defer close(serverDone)
		w.Header().Set("Content-Type", "text/event-stream")
		for {
			select {
			case <-r.Context().Done():
				return
			default:
			}
			writeSSE(w, `{"choices":[{"delta":{"content":"x"}}]}`)
		}
	})

	stream, err := provider.InvokeStream(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	require.NoError(t, err)

	for range stream.Iter() {
		break
	}

	select {
	case <-serverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("server handler still streaming after the consumer stopped")
	}
}

// TestNew_NilLoggerFallsBackToDefault verifies WithLogger(nil) does not
// leave the provider without a logger.
func TestNew_NilLoggerFallsBackToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)
	}))
	t.Cleanup(server.Close)

	config, err := NewConfig(WithAPIKey("test-key"), WithAPIBase(server.URL))
	require.NoError(t, err)
	provider, err := New(config, WithLogger(nil))
	require.NoError(t, err)

	result, err := provider.Generate(context.Background(), ai.NewMessagesBuilder().AddHumanMessage("hi").Build())
	require.NoError(t, err)
	assert.Equal(t, "ok", result.(*ai.GenerateResult).Text)
}
