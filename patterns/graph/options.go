package graph

import (
	"log/slog"

	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
)

// DefaultMaxSteps bounds the node executions of a single run.
const DefaultMaxSteps = 1024

// graphConfig holds the graph-level configuration populated from Options.
type graphConfig struct {
	maxSteps int
	logger   *slog.Logger
	metrics  *metrics.Collector
}

func defaultConfig() *graphConfig {
	return &graphConfig{
		maxSteps: DefaultMaxSteps,
		logger:   logging.OrDefault(nil),
	}
}

// Option configures a Graph.
type Option func(*graphConfig)

// WithMaxSteps sets how many nodes a run may execute, start node included.
// Values below one are ignored.
//
// Example:
//
//	g := graph.New[State](graph.WithMaxSteps(50))
func WithMaxSteps(steps int) Option {
	return func(config *graphConfig) {
		if steps > 0 {
			config.maxSteps = steps
		}
	}
}

// WithLogger sets the logger used for step tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(config *graphConfig) {
		config.logger = logging.OrDefault(logger)
	}
}

// WithMetrics records node executions and run outcomes on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(config *graphConfig) {
		config.metrics = collector
	}
}
