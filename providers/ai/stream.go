package ai

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
)

// DefaultStreamBuffer is the number of items a producer may run ahead of
// the consumer before it blocks.
const DefaultStreamBuffer = 16

// StreamItem is one element of a ResultStream: either a result or an error.
type StreamItem struct {
	Result LLMResult
	Err    error
}

// Emit hands an item to the consumer. It returns false once the consumer has
// closed the stream, after which the producer must stop.
type Emit func(result LLMResult, err error) bool

// ResultStream is a lazy, finite, single-consumer sequence of results. A
// producer goroutine decodes upstream data and hands items over a bounded
// channel, so items arrive in production order and nothing is decoded far
// ahead of the consumer.
//
// Consume it with Iter, Next or Collect. Breaking out of Iter or calling
// Close cancels the producer's context, which releases the upstream
// connection. A stream that is neither drained nor closed keeps its
// producer goroutine alive.
type ResultStream struct {
	items     <-chan StreamItem
	cancel    context.CancelFunc
	done      <-chan struct{}
	closeOnce sync.Once
}

// NewResultStream starts produce in its own goroutine and returns the
// consuming side. The context handed to produce is cancelled when the
// consumer closes the stream or ctx is cancelled.
func NewResultStream(ctx context.Context, produce func(ctx context.Context, emit Emit)) *ResultStream {
	return newResultStream(ctx, DefaultStreamBuffer, produce)
}

// NewResultStreamFromItems returns a stream that yields the given items in
// order. It is useful for providers that answer synchronously and in tests.
func NewResultStreamFromItems(items ...StreamItem) *ResultStream {
	return NewResultStream(context.Background(), func(ctx context.Context, emit Emit) {
		for _, item := range items {
			if !emit(item.Result, item.Err) {
				return
			}
		}
	})
}

func newResultStream(ctx context.Context, buffer int, produce func(ctx context.Context, emit Emit)) *ResultStream {
	streamCtx, cancel := context.WithCancel(ctx)
	items := make(chan StreamItem, buffer)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(items)
		produce(streamCtx, func(result LLMResult, err error) bool {
			if streamCtx.Err() != nil {
				return false
			}
			select {
			case items <- StreamItem{Result: result, Err: err}:
				return true
			case <-streamCtx.Done():
				return false
			}
		})
	}()

	return &ResultStream{
		items:  items,
		cancel: cancel,
		done:   done,
	}
}

// Next blocks until the next item is available. ok is false once the
// stream is exhausted.
func (stream *ResultStream) Next() (item StreamItem, ok bool) {
	item, ok = <-stream.items
	return item, ok
}

// Iter returns a range-over-func view of the stream. Breaking out of the
// loop closes the stream.
//
//	for result, err := range stream.Iter() {
//	    if err != nil { ... }
//	}
func (stream *ResultStream) Iter() iter.Seq2[LLMResult, error] {
	return func(yield func(LLMResult, error) bool) {
		defer stream.Close()
		for item := range stream.items {
			if !yield(item.Result, item.Err) {
				return
			}
		}
	}
}

// Close stops the producer and waits until it has released its upstream
// resources. It is safe to call more than once.
func (stream *ResultStream) Close() {
	stream.closeOnce.Do(func() {
		stream.cancel()
		// Drain so a producer blocked on a full buffer observes cancellation.
		go func() {
			for range stream.items {
			}
		}()
		<-stream.done
	})
}

// Collect drains the stream into a single result. Text fragments are
// concatenated in arrival order and the last reported usage is kept. The
// first tool call or the first error ends collection and closes the stream.
func (stream *ResultStream) Collect() (LLMResult, error) {
	defer stream.Close()

	var (
		text     strings.Builder
		usage    *Usage
		received bool
	)
	for item := range stream.items {
		if item.Err != nil {
			return nil, item.Err
		}
		switch result := item.Result.(type) {
		case *ToolCallResult:
			return result, nil
		case *GenerateResult:
			received = true
			text.WriteString(result.Text)
			if result.Usage != nil {
				usage = result.Usage
			}
		}
	}

	if !received {
		return nil, fmt.Errorf("%w: stream ended without a result", ErrProtocol)
	}
	return &GenerateResult{Text: text.String(), Usage: usage}, nil
}
