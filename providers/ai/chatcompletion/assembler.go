package chatcompletion

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leofalp/fungraph/providers/ai"
)

// toolCallAccumulator collects the fragments of one streamed tool call.
type toolCallAccumulator struct {
	id        string
	name      strings.Builder
	arguments strings.Builder
}

// Assembler turns streamed chat-completion chunks into results.
//
// Text fragments are emitted as they arrive, one GenerateResult per
// fragment and never pre-concatenated. Tool call fragments are accumulated
// per index and emitted as complete ToolCallResults, in index order, once
// the choice reports a finish reason or the stream ends. An Assembler
// belongs to a single stream and is not safe for concurrent use.
type Assembler struct {
	pending map[int]*toolCallAccumulator
}

// NewAssembler returns an Assembler with no pending tool calls.
func NewAssembler() *Assembler {
	return &Assembler{pending: make(map[int]*toolCallAccumulator)}
}

// Pending reports whether tool call fragments are waiting for completion.
func (assembler *Assembler) Pending() bool {
	return len(assembler.pending) > 0
}

// Feed decodes one SSE data payload and returns the results it completes.
// A payload that is not a valid chunk yields an error matching ai.ErrDecode
// and leaves the accumulated state untouched, so decoding can continue with
// the next payload.
func (assembler *Assembler) Feed(payload string) ([]ai.LLMResult, error) {
	var chunk StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, fmt.Errorf("%w: failed to parse streaming chunk: %w", ai.ErrDecode, err)
	}
	return assembler.FeedChunk(&chunk)
}

// FeedChunk processes an already decoded chunk.
func (assembler *Assembler) FeedChunk(chunk *StreamChunk) ([]ai.LLMResult, error) {
	usage := convertUsage(chunk.Usage)

	if len(chunk.Choices) == 0 {
		// Some servers open the stream with a chunk carrying only metadata,
		// e.g. prompt_filter_results.
		if usage == nil {
			return nil, nil
		}
		return []ai.LLMResult{&ai.GenerateResult{Usage: usage}}, nil
	}

	choice := chunk.Choices[0]
	for _, delta := range choice.Delta.ToolCalls {
		assembler.accumulate(delta)
	}

	var results []ai.LLMResult
	if choice.Delta.Content != "" {
		results = append(results, &ai.GenerateResult{Text: choice.Delta.Content, Usage: usage})
		usage = nil
	}

	var flushErr error
	if choice.FinishReason != "" && assembler.Pending() {
		var completed []ai.LLMResult
		completed, flushErr = assembler.flush()
		results = append(results, completed...)
	}

	// Usage that arrived without text still reaches the consumer.
	if usage != nil {
		results = append(results, &ai.GenerateResult{Usage: usage})
	}

	return results, flushErr
}

// Finish completes any tool calls still pending at the end of the stream.
func (assembler *Assembler) Finish() ([]ai.LLMResult, error) {
	if !assembler.Pending() {
		return nil, nil
	}
	return assembler.flush()
}

func (assembler *Assembler) accumulate(delta ToolCallDelta) {
	accumulator, exists := assembler.pending[delta.Index]
	if !exists {
		accumulator = &toolCallAccumulator{}
		assembler.pending[delta.Index] = accumulator
	}
	if delta.ID != "" {
		accumulator.id = delta.ID
	}
	accumulator.name.WriteString(delta.Function.Name)
	accumulator.arguments.WriteString(delta.Function.Arguments)
}

// flush parses every pending call in index order and clears the state.
func (assembler *Assembler) flush() ([]ai.LLMResult, error) {
	indices := make([]int, 0, len(assembler.pending))
	for index := range assembler.pending {
		indices = append(indices, index)
	}
	slices.Sort(indices)

	var (
		results []ai.LLMResult
		errs    []error
	)
	for _, index := range indices {
		accumulator := assembler.pending[index]
		result, err := NewToolCallResult(accumulator.id, accumulator.name.String(), accumulator.arguments.String())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}

	clear(assembler.pending)
	return results, errors.Join(errs...)
}
