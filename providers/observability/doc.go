// Package observability groups the ambient signals emitted by fungraph
// components. Structured logs go through log/slog loggers built by the
// logging subpackage; counters and latency histograms are exported to
// Prometheus by the metrics subpackage.
package observability
