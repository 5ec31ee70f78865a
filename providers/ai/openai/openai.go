package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/ai/chatcompletion"
	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
)

const providerName = "openai"

// Provider adapts the OpenAI SDK client to ai.Provider. It is safe for
// concurrent use.
type Provider struct {
	client  openai.Client
	model   string
	logger  *slog.Logger
	metrics *metrics.Collector

	mu      sync.RWMutex
	options ai.CallOptions
}

var _ ai.Provider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*providerSettings)

type providerSettings struct {
	httpClient     *http.Client
	logger         *slog.Logger
	metrics        *metrics.Collector
	requestOptions []option.RequestOption
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(settings *providerSettings) {
		settings.httpClient = client
	}
}

// WithLogger sets the logger used for request diagnostics. A nil logger
// selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(settings *providerSettings) {
		settings.logger = logging.OrDefault(logger)
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(collector *metrics.Collector) Option {
	return func(settings *providerSettings) {
		settings.metrics = collector
	}
}

// WithRequestOptions passes raw SDK request options, applied last.
func WithRequestOptions(requestOptions ...option.RequestOption) Option {
	return func(settings *providerSettings) {
		settings.requestOptions = append(settings.requestOptions, requestOptions...)
	}
}

// New returns a Provider for config.
func New(config Config, options ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	settings := providerSettings{logger: slog.Default()}
	for _, apply := range options {
		apply(&settings)
	}

	requestOptions := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(config.BaseURL))
	}
	if config.MaxRetries != nil {
		requestOptions = append(requestOptions, option.WithMaxRetries(*config.MaxRetries))
	}
	if settings.httpClient != nil {
		requestOptions = append(requestOptions, option.WithHTTPClient(settings.httpClient))
	}
	requestOptions = append(requestOptions, settings.requestOptions...)

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client:  openai.NewClient(requestOptions...),
		model:   model,
		logger:  settings.logger,
		metrics: settings.metrics,
	}, nil
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
	return provider.options
}

// Generate sends messages and waits for the complete answer.
func (provider *Provider) Generate(ctx context.Context, messages ai.Messages) (ai.LLMResult, error) {
	params, err := buildParams(provider.model, messages, provider.callOptions(), false)
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}

	start := time.Now()
	completion, err := provider.client.Chat.Completions.New(ctx, params)
	var result ai.LLMResult
	if err != nil {
		err = classifyError(err)
	} else {
		result, err = chatcompletion.ResultFromResponse(completionToResponse(completion))
	}
	provider.metrics.ObserveLLMRequest(providerName, "sync", time.Since(start), err)
	if err != nil {
		provider.logger.DebugContext(ctx, "openai request failed", logging.AttrError, err)
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	return result, nil
}

// Invoke is Generate.
func (provider *Provider) Invoke(ctx context.Context, messages ai.Messages) (ai.LLMResult, error) {
	return provider.Generate(ctx, messages)
}

// InvokeStream starts a streaming completion. The SDK opens the connection
// lazily, so request failures arrive as the first error item of the stream.
func (provider *Provider) InvokeStream(ctx context.Context, messages ai.Messages) (*ai.ResultStream, error) {
	params, err := buildParams(provider.model, messages, provider.callOptions(), true)
	if err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}

	return ai.NewResultStream(ctx, func(ctx context.Context, emit ai.Emit) {
		start := time.Now()
		stream := provider.client.Chat.Completions.NewStreaming(ctx, params)
		defer func() {
			if closeErr := stream.Close(); closeErr != nil {
				provider.logger.Warn("failed to close openai stream", logging.AttrError, closeErr)
			}
		}()

		assembler := chatcompletion.NewAssembler()
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

		first := true
		for stream.Next() {
			if first {
				provider.metrics.ObserveLLMRequest(providerName, "stream", time.Since(start), nil)
				first = false
			}
			chunk := stream.Current()
			if !emitAll(assembler.FeedChunk(chunkToStreamChunk(&chunk))) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				return
			}
			if first {
				provider.metrics.ObserveLLMRequest(providerName, "stream", time.Since(start), err)
			}
			emit(nil, fmt.Errorf("openai stream: %w", classifyError(err)))
			return
		}
		emitAll(assembler.Finish())
	}), nil
}

// classifyError maps SDK errors onto the ai error taxonomy.
func classifyError(err error) error {
	var apiError *openai.Error
	if errors.As(err, &apiError) {
		return &ai.StatusError{StatusCode: apiError.StatusCode, Body: apiError.Error()}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ai.ErrTransport, err)
}
