package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResultStream_Collect_ConcatenatesFragments verifies text fragments are
// joined in order and the last usage wins.
func TestResultStream_Collect_ConcatenatesFragments(t *testing.T) {
	stream := NewResultStreamFromItems(
		StreamItem{Result: &GenerateResult{Text: "he"}},
		StreamItem{Result: &GenerateResult{Text: "llo", Usage: &Usage{TotalTokens: 3}}},
		StreamItem{Result: &GenerateResult{Text: ""}},
	)

	result, err := stream.Collect()
	require.NoError(t, err)

	generated, ok := result.(*GenerateResult)
	require.True(t, ok)
	assert.Equal(t, "hello", generated.Text)
	require.NotNil(t, generated.Usage)
	assert.Equal(t, 3, generated.Usage.TotalTokens)
}

// TestResultStream_Collect_ReturnsToolCall verifies the first tool call ends
// collection.
func TestResultStream_Collect_ReturnsToolCall(t *testing.T) {
	call := NewToolCallResult("call_1", "get_weather", map[string]any{"location": "tokyo"}, `{"location":"tokyo"}`)
	stream := NewResultStreamFromItems(
		StreamItem{Result: &GenerateResult{Text: "thinking"}},
		StreamItem{Result: call},
	)

	result, err := stream.Collect()
	require.NoError(t, err)
	assert.Same(t, call, result)
}

// TestResultStream_Collect_ReturnsFirstError verifies an error item stops
// collection.
func TestResultStream_Collect_ReturnsFirstError(t *testing.T) {
	stream := NewResultStreamFromItems(
		StreamItem{Result: &GenerateResult{Text: "a"}},
		StreamItem{Err: fmt.Errorf("%w: bad chunk", ErrDecode)},
		StreamItem{Result: &GenerateResult{Text: "b"}},
	)

	_, err := stream.Collect()
	assert.ErrorIs(t, err, ErrDecode)
}

// TestResultStream_Collect_EmptyStreamIsProtocolError verifies a stream that
// yields nothing cannot be mistaken for an empty answer.
func TestResultStream_Collect_EmptyStreamIsProtocolError(t *testing.T) {
	_, err := NewResultStreamFromItems().Collect()
	assert.ErrorIs(t, err, ErrProtocol)
}

// TestResultStream_Iter_YieldsInProductionOrder verifies FIFO delivery.
func TestResultStream_Iter_YieldsInProductionOrder(t *testing.T) {
	stream := NewResultStream(context.Background(), func(ctx context.Context, emit Emit) {
		for index := range 50 {
			if !emit(&GenerateResult{Text: fmt.Sprint(index)}, nil) {
				return
			}
		}
	})

	var received []string
	for result, err := range stream.Iter() {
		require.NoError(t, err)
		received = append(received, result.(*GenerateResult).Text)
	}

	require.Len(t, received, 50)
	for index, text := range received {
		assert.Equal(t, fmt.Sprint(index), text)
	}
}

// TestResultStream_Iter_BreakReleasesProducer verifies that abandoning the
// stream cancels the producer and lets it clean up.
func TestResultStream_Iter_BreakReleasesProducer(t *testing.T) {
	released := make(chan struct{})
	stream := NewResultStream(context.Background(), func(ctx context.Context, emit Emit) {
		defer close(released)
		for {
			if !emit(&GenerateResult{Text: "x"}, nil) {
				return
			}
		}
	})

	for range stream.Iter() {
		break
	}

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("producer was not released after the consumer stopped")
	}
}

// TestResultStream_Close_IsIdempotent verifies Close can be called twice and
// that Next reports exhaustion afterwards.
func TestResultStream_Close_IsIdempotent(t *testing.T) {
	stream := NewResultStream(context.Background(), func(ctx context.Context, emit Emit) {
		<-ctx.Done()
	})

	stream.Close()
	stream.Close()

	_, ok := stream.Next()
	assert.False(t, ok)
}

// TestResultStream_ParentCancellationStopsProducer verifies cancelling the
// creating context ends the stream.
func TestResultStream_ParentCancellationStopsProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stream := NewResultStream(ctx, func(ctx context.Context, emit Emit) {
		<-ctx.Done()
		emit(nil, ctx.Err())
	})

	cancel()

	// The producer may or may not get its error item through before the
	// channel closes; either way the stream must end.
	for {
		item, ok := stream.Next()
		if !ok {
			break
		}
		assert.True(t, errors.Is(item.Err, context.Canceled))
	}
}

// TestStatusError_MatchesTransport verifies HTTP status failures classify as
// transport errors.
func TestStatusError_MatchesTransport(t *testing.T) {
	var err error = fmt.Errorf("request failed: %w", &StatusError{StatusCode: 429, Body: "slow down"})

	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrDecode)

	var statusError *StatusError
	require.ErrorAs(t, err, &statusError)
	assert.Equal(t, 429, statusError.StatusCode)
	assert.Contains(t, err.Error(), "slow down")
}
