package chatcompletion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/leofalp/fungraph/internal/utils"
	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/observability/logging"
)

// StreamResults decodes an SSE chat-completion body into a ResultStream.
//
// Decode failures of single chunks are delivered as error items and
// decoding continues. A failure to read the body is delivered as an item
// matching ai.ErrTransport and ends the stream. The [DONE] sentinel and a
// body that simply ends are both normal terminations; tool calls still
// pending at that point are emitted first. The body is closed when the
// stream ends or the consumer closes it.
func StreamResults(ctx context.Context, body io.ReadCloser, logger *slog.Logger) *ai.ResultStream {
	logger = logging.OrDefault(logger)

	return ai.NewResultStream(ctx, func(ctx context.Context, emit ai.Emit) {
		closeBody := sync.OnceFunc(func() { utils.CloseWithLog(body) })
		defer closeBody()
		// Unblocks a pending read when the consumer goes away.
		stop := context.AfterFunc(ctx, closeBody)
		defer stop()

		scanner := utils.NewSSEScanner(body)
		assembler := NewAssembler()
		frames := 0

		emitAll := func(results []ai.LLMResult, err error) bool {
			for _, result := range results {
				if !emit(result, nil) {
					return false
				}
			}
			if err != nil {
				return emit(nil, err)
			}
			return true
		}

		for {
			payload, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				logger.Debug("chat completion stream ended",
					logging.AttrStreamFrames, frames,
					logging.AttrStreamPendingToolCalls, assembler.Pending(),
				)
				emitAll(assembler.Finish())
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				emit(nil, fmt.Errorf("%w: SSE read error: %w", ai.ErrTransport, err))
				return
			}

			frames++
			results, feedErr := assembler.Feed(payload)
			if feedErr != nil {
				logger.Warn("discarding malformed stream chunk",
					logging.AttrError, feedErr,
					logging.AttrStreamPayload, utils.TruncateString(payload, 200),
				)
			}
			if !emitAll(results, feedErr) {
				return
			}
		}
	})
}
