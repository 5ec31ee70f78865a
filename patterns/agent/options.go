package agent

import (
	"log/slog"

	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
	"github.com/leofalp/fungraph/providers/tool"
)

// DefaultMaxToolRounds is the number of tool round trips allowed per turn.
const DefaultMaxToolRounds = 8

// Option configures an Agent.
type Option func(*Agent)

// WithSystemPrompt sets the system message sent before the history.
func WithSystemPrompt(prompt string) Option {
	return func(agent *Agent) {
		agent.systemPrompt = prompt
	}
}

// WithTools registers tools in the agent's catalog.
func WithTools(tools ...tool.Tool) Option {
	return func(agent *Agent) {
		agent.catalog.AddTools(tools...)
	}
}

// WithCatalog adds every tool of catalog to the agent's catalog. The agent
// keeps its own copy.
func WithCatalog(catalog *tool.Catalog) Option {
	return func(agent *Agent) {
		agent.catalog.Merge(catalog)
	}
}

// WithMaxToolRounds bounds the tool round trips of one turn. Values below
// one are ignored.
func WithMaxToolRounds(rounds int) Option {
	return func(agent *Agent) {
		if rounds > 0 {
			agent.maxToolRounds = rounds
		}
	}
}

// WithStreaming makes the agent use the provider's streaming endpoint and
// collect each stream into one result.
func WithStreaming(enabled bool) Option {
	return func(agent *Agent) {
		agent.streaming = enabled
	}
}

// WithLogger sets the logger for turn and tool tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(agent *Agent) {
		agent.logger = logging.OrDefault(logger)
	}
}

// WithMetrics records tool calls and rounds per turn on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(agent *Agent) {
		agent.metrics = collector
	}
}
