package graph

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
)

// Run outcome labels beyond metrics.OutcomeSuccess and metrics.OutcomeError.
const (
	outcomeDeadEnd   = "dead_end"
	outcomeMaxSteps  = "max_steps"
	outcomeCanceled  = "canceled"
	outcomeNodeError = "node_error"
	outcomeInvalid   = "invalid"
)

func (graph *Graph[S]) observeNodeStart(ctx context.Context, node string, step int) {
	graph.config.logger.DebugContext(ctx, "graph node started",
		slog.String(logging.AttrGraphNode, node),
		slog.Int(logging.AttrGraphStep, step),
	)
}

func (graph *Graph[S]) observeNodeFinished(ctx context.Context, node string, step int, duration time.Duration, err error) {
	graph.config.metrics.ObserveNodeExecution(node, err)

	if err != nil {
		graph.config.logger.WarnContext(ctx, "graph node failed",
			slog.String(logging.AttrGraphNode, node),
			slog.Int(logging.AttrGraphStep, step),
			slog.Duration(logging.AttrDuration, duration),
			slog.Any(logging.AttrError, err),
		)
		return
	}
	graph.config.logger.DebugContext(ctx, "graph node finished",
		slog.String(logging.AttrGraphNode, node),
		slog.Int(logging.AttrGraphStep, step),
		slog.Duration(logging.AttrDuration, duration),
	)
}

func (graph *Graph[S]) observeRunFinished(ctx context.Context, duration time.Duration, err error) {
	outcome := runOutcome(err)
	graph.config.metrics.ObserveGraphRun(outcome)

	if err != nil {
		graph.config.logger.DebugContext(ctx, "graph run stopped",
			slog.String(logging.AttrGraphOutcome, outcome),
			slog.Duration(logging.AttrDuration, duration),
			slog.Any(logging.AttrError, err),
		)
		return
	}
	graph.config.logger.DebugContext(ctx, "graph run completed", slog.Duration(logging.AttrDuration, duration))
}

func runOutcome(err error) string {
	var nodeError *NodeError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidGraph):
		return outcomeInvalid
	case errors.As(err, &nodeError):
		return outcomeNodeError
	case errors.Is(err, ErrDeadEnd):
		return outcomeDeadEnd
	case errors.Is(err, ErrMaxStepsExceeded):
		return outcomeMaxSteps
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return metrics.OutcomeError
	}
}
