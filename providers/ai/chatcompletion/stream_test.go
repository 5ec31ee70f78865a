package chatcompletion

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/fungraph/providers/ai"
)

// trackingBody records whether it was closed.
type trackingBody struct {
	io.Reader
	closed atomic.Bool
}

func (body *trackingBody) Close() error {
	body.closed.Store(true)
	return nil
}

// failingReader returns its data, then a non-EOF error.
type failingReader struct {
	data string
	read bool
}

func (reader *failingReader) Read(buffer []byte) (int, error) {
	if !reader.read {
		reader.read = true
		return copy(buffer, reader.data), nil
	}
	return 0, errors.New("connection reset")
}

// blockingReader never returns until closed.
type blockingReader struct {
	closed chan struct{}
}

func (reader *blockingReader) Read([]byte) (int, error) {
	<-reader.closed
	return 0, io.ErrClosedPipe
}

func (reader *blockingReader) Close() error {
	close(reader.closed)
	return nil
}

func collectItems(stream *ai.ResultStream) []ai.StreamItem {
	var items []ai.StreamItem
	for {
		item, ok := stream.Next()
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

// TestStreamResults_TextThenDone verifies "he" + "llo" collects to "hello"
// and the body is closed afterwards.
func TestStreamResults_TextThenDone(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"content\":\"he\"}}]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}\n\n" +
			"data: [DONE]\n\n")}

	result, err := StreamResults(context.Background(), body, nil).Collect()
	require.NoError(t, err)
	assert.Equal(t, "hello", result.(*ai.GenerateResult).Text)
	assert.True(t, body.closed.Load())
}

// TestStreamResults_SingleNewlineFrames verifies frames separated by a single
// newline, as in "data:{...}\ndata:{...}\ndata:[DONE]", assemble the same way.
func TestStreamResults_SingleNewlineFrames(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data:{\"choices\":[{\"delta\":{\"content\":\"he\"}}]}\n" +
			"data:{\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}\n" +
			"data:[DONE]\n")}

	items := collectItems(StreamResults(context.Background(), body, nil))
	require.Len(t, items, 2)
	for _, item := range items {
		require.NoError(t, item.Err)
	}
	assert.Equal(t, "he", items[0].Result.(*ai.GenerateResult).Text)
	assert.Equal(t, "llo", items[1].Result.(*ai.GenerateResult).Text)
}

// TestStreamResults_SingleNewlineMalformedFrame verifies a bad frame right
// before [DONE] still surfaces as an error item.
func TestStreamResults_SingleNewlineMalformedFrame(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data:{\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n" +
			"data:{\"choices\": [\n" +
			"data:[DONE]\n")}

	items := collectItems(StreamResults(context.Background(), body, nil))
	require.Len(t, items, 2)
	assert.Equal(t, "ok", items[0].Result.(*ai.GenerateResult).Text)
	assert.ErrorIs(t, items[1].Err, ai.ErrDecode)
}

// TestStreamResults_MetadataChunkFirst verifies a leading chunk without
// choices does not fail Collect.
func TestStreamResults_MetadataChunkFirst(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data: {\"choices\":[],\"prompt_filter_results\":[]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\n" +
			"data: [DONE]\n\n")}

	result, err := StreamResults(context.Background(), body, nil).Collect()
	require.NoError(t, err)
	assert.Equal(t, "hi", result.(*ai.GenerateResult).Text)
}

// TestStreamResults_EndWithoutDone_FlushesToolCall verifies a body that ends
// without the sentinel still completes the pending tool call.
func TestStreamResults_EndWithoutDone_FlushesToolCall(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_1\",\"function\":{\"name\":\"get_weather\",\"arguments\":\"{\\\"location\\\":\"}}]}}]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"\\\"tokyo\\\"}\"}}]}}]}\n\n")}

	items := collectItems(StreamResults(context.Background(), body, nil))

	require.Len(t, items, 1)
	require.NoError(t, items[0].Err)
	toolCall := items[0].Result.(*ai.ToolCallResult)
	assert.Equal(t, "get_weather", toolCall.Name)
	assert.Equal(t, map[string]any{"location": "tokyo"}, toolCall.Arguments)
}

// TestStreamResults_MalformedChunk_ContinuesDecoding verifies a bad frame
// becomes an error item and later frames are still delivered.
func TestStreamResults_MalformedChunk_ContinuesDecoding(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data: {not json}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n\n" +
			"data: [DONE]\n\n")}

	items := collectItems(StreamResults(context.Background(), body, nil))

	require.Len(t, items, 2)
	assert.ErrorIs(t, items[0].Err, ai.ErrDecode)
	require.NoError(t, items[1].Err)
	assert.Equal(t, "after", items[1].Result.(*ai.GenerateResult).Text)
}

// TestStreamResults_ReadFailure_IsTransportItem verifies an IO error ends
// the stream with a transport error item.
func TestStreamResults_ReadFailure_IsTransportItem(t *testing.T) {
	reader := &failingReader{data: "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n"}
	body := &trackingBody{Reader: reader}

	items := collectItems(StreamResults(context.Background(), body, nil))

	require.Len(t, items, 2)
	assert.Equal(t, "partial", items[0].Result.(*ai.GenerateResult).Text)
	assert.ErrorIs(t, items[1].Err, ai.ErrTransport)
	assert.True(t, body.closed.Load())
}

// TestStreamResults_CloseReleasesBlockedBody verifies closing the stream
// closes a body whose read is blocked.
func TestStreamResults_CloseReleasesBlockedBody(t *testing.T) {
	body := &blockingReader{closed: make(chan struct{})}
	stream := StreamResults(context.Background(), body, nil)

	closed := make(chan struct{})
	go func() {
		stream.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while the body read was blocked")
	}
	select {
	case <-body.closed:
	default:
		t.Fatal("body was not closed")
	}
}
