package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leofalp/fungraph/internal/utils"
	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/ai/chatcompletion"
	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
)

const providerName = "gemini"

// Provider talks to Gemini over the chat-completion protocol. It is safe for
// concurrent use.
type Provider struct {
	config  Config
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.Collector

	mu      sync.RWMutex
	options ai.CallOptions
}

var _ ai.Provider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

// WithHTTPClient replaces the HTTP client. It takes precedence over
// Config.Timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(provider *Provider) {
		provider.client = client
	}
}

// WithLogger sets the logger used for request diagnostics. A nil logger
// selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(provider *Provider) {
		provider.logger = logging.OrDefault(logger)
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(collector *metrics.Collector) Option {
	return func(provider *Provider) {
		provider.metrics = collector
	}
}

// New returns a Provider for config.
func New(config Config, options ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.APIBase == "" {
		config.APIBase = DefaultAPIBase
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	provider := &Provider{
		config: config,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(provider)
	}
	if provider.client == nil {
		provider.client = &http.Client{Timeout: config.Timeout}
	}
	return provider, nil
}

// Config returns the provider's configuration.
func (provider *Provider) Config() Config {
	return provider.config
}

// AddOptions merges options into the options applied to every request.
func (provider *Provider) AddOptions(options ai.CallOptions) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.options = provider.options.Merge(options)
}

func (provider *Provider) callOptions() ai.CallOptions {
	provider.mu.RLock()
	defer provider.mu.RUnlock()
	return ai.CallOptions{JSONResponse: provider.config.JSONResponse}.Merge(provider.options)
}

func (provider *Provider) endpoint() string {
	return strings.TrimRight(provider.config.APIBase, "/") + chatcompletion.Endpoint
}

// Generate sends messages and waits for the complete answer.
func (provider *Provider) Generate(ctx context.Context, messages ai.Messages) (ai.LLMResult, error) {
	request := chatcompletion.NewRequest(string(provider.config.Model), messages, provider.callOptions(), false)

	provider.logger.DebugContext(ctx, "gemini request",
		logging.AttrLLMModel, request.Model,
		logging.AttrLLMMessages, len(request.Messages),
		logging.AttrLLMTools, len(request.Tools),
	)

	start := time.Now()
	_, response, err := utils.DoPostSync[chatcompletion.Response](ctx, provider.client, provider.endpoint(), provider.config.APIKey, request)
	var result ai.LLMResult
	if err == nil {
		result, err = chatcompletion.ResultFromResponse(response)
	}
	provider.metrics.ObserveLLMRequest(providerName, "sync", time.Since(start), err)
	if err != nil {
		provider.logger.DebugContext(ctx, "gemini request failed", logging.AttrError, err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return result, nil
}

// Invoke is Generate; Gemini has a single invocation path.
func (provider *Provider) Invoke(ctx context.Context, messages ai.Messages) (ai.LLMResult, error) {
	return provider.Generate(ctx, messages)
}

// InvokeStream sends messages with streaming enabled. The returned stream
// yields text fragments as they arrive and complete tool calls once all of
// their fragments have been received.
func (provider *Provider) InvokeStream(ctx context.Context, messages ai.Messages) (*ai.ResultStream, error) {
	request := chatcompletion.NewRequest(string(provider.config.Model), messages, provider.callOptions(), true)

	provider.logger.DebugContext(ctx, "gemini stream request",
		logging.AttrLLMModel, request.Model,
		logging.AttrLLMMessages, len(request.Messages),
		logging.AttrLLMTools, len(request.Tools),
	)

	start := time.Now()
	response, err := utils.DoPostStream(ctx, provider.client, provider.endpoint(), provider.config.APIKey, request)
	provider.metrics.ObserveLLMRequest(providerName, "stream", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("gemini stream: %w", err)
	}

	return chatcompletion.StreamResults(ctx, response.Body, provider.logger), nil
}
