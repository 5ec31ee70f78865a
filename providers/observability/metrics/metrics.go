// Package metrics exports fungraph activity to Prometheus.
//
// A [Collector] owns the counters and histograms for graph steps, LLM
// requests and tool invocations. Every method is safe on a nil *Collector,
// so components record unconditionally and metrics stay opt-in:
//
//	registry := prometheus.NewRegistry()
//	collector := metrics.NewCollector(registry)
//	g := graph.New[State](graph.WithMetrics(collector))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fungraph"

// Outcome label values shared by the collectors.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector holds the Prometheus collectors of one process.
type Collector struct {
	nodeExecutions *prometheus.CounterVec
	graphRuns      *prometheus.CounterVec
	llmRequests    *prometheus.CounterVec
	llmDuration    *prometheus.HistogramVec
	toolCalls      *prometheus.CounterVec
	toolDuration   *prometheus.HistogramVec
	agentRounds    prometheus.Histogram
}

// NewCollector creates the collectors and registers them with registerer.
// It panics if registration fails, as prometheus.MustRegister does.
func NewCollector(registerer prometheus.Registerer) *Collector {
	collector := &Collector{
		nodeExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_node_executions_total",
			Help:      "Total number of graph node executions.",
		}, []string{"node", "outcome"}),
		graphRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_runs_total",
			Help:      "Total number of graph runs by outcome.",
		}, []string{"outcome"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests.",
		}, []string{"provider", "mode", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Time until the provider answered or the stream was established.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"provider", "mode"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool invocations.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		agentRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_tool_rounds",
			Help:      "Tool round trips per agent invocation.",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		}),
	}

	registerer.MustRegister(
		collector.nodeExecutions,
		collector.graphRuns,
		collector.llmRequests,
		collector.llmDuration,
		collector.toolCalls,
		collector.toolDuration,
		collector.agentRounds,
	)
	return collector
}

// ObserveNodeExecution counts one execution of node.
func (collector *Collector) ObserveNodeExecution(node string, err error) {
	if collector == nil {
		return
	}
	collector.nodeExecutions.WithLabelValues(node, outcome(err)).Inc()
}

// ObserveGraphRun counts a finished run. outcome is a short label such as
// "success", "dead_end" or "error".
func (collector *Collector) ObserveGraphRun(outcome string) {
	if collector == nil {
		return
	}
	collector.graphRuns.WithLabelValues(outcome).Inc()
}

// ObserveLLMRequest records one provider call. mode is "sync" or "stream".
func (collector *Collector) ObserveLLMRequest(provider string, mode string, duration time.Duration, err error) {
	if collector == nil {
		return
	}
	collector.llmRequests.WithLabelValues(provider, mode, outcome(err)).Inc()
	collector.llmDuration.WithLabelValues(provider, mode).Observe(duration.Seconds())
}

// ObserveToolCall records one tool invocation.
func (collector *Collector) ObserveToolCall(tool string, duration time.Duration, err error) {
	if collector == nil {
		return
	}
	collector.toolCalls.WithLabelValues(tool, outcome(err)).Inc()
	collector.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObserveAgentRounds records how many tool round trips one invocation took.
func (collector *Collector) ObserveAgentRounds(rounds int) {
	if collector == nil {
		return
	}
	collector.agentRounds.Observe(float64(rounds))
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
