package ai

import (
	"context"
)

// Provider is the contract every LLM back end implements. Implementations
// must be safe for concurrent use: agent loops share a provider read-only.
type Provider interface {
	// Generate sends messages and returns one complete result. Transport,
	// decode and protocol failures are returned as errors.
	Generate(ctx context.Context, messages Messages) (LLMResult, error)

	// Invoke is the entry point used by the agent loop. Providers without a
	// separate invocation path delegate to Generate.
	Invoke(ctx context.Context, messages Messages) (LLMResult, error)

	// InvokeStream sends messages with streaming enabled. Failures before the
	// stream is established are returned directly; failures afterwards are
	// delivered as error items of the stream.
	InvokeStream(ctx context.Context, messages Messages) (*ResultStream, error)

	// AddOptions merges options into the provider's call options. It is meant
	// for configuration time, before the provider is shared.
	AddOptions(options CallOptions)
}
