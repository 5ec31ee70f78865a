package gemini

import (
	"errors"
	"os"
	"time"
)

// Model names a Gemini model.
type Model string

const (
	ModelGemini15Flash Model = "gemini-1.5-flash"
	ModelGemini20Flash Model = "gemini-2.0-flash-001"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = ModelGemini15Flash

	// DefaultAPIBase is Google's OpenAI-compatible endpoint.
	DefaultAPIBase = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// ErrMissingAPIKey is returned when a configuration has no API key.
var ErrMissingAPIKey = errors.New("API key must be set")

// Config holds the connection settings of a Provider.
type Config struct {
	// APIBase is the base URL; the provider posts to APIBase + "/chat/completions".
	APIBase string
	APIKey  string
	Model   Model
	// JSONResponse asks the model to answer with a JSON object.
	JSONResponse bool
	// Timeout bounds each HTTP exchange, including the whole stream. Zero
	// means no timeout.
	Timeout time.Duration
}

// ConfigOption customizes a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) ConfigOption {
	return func(config *Config) {
		config.APIKey = apiKey
	}
}

// WithAPIBase overrides the base URL.
func WithAPIBase(apiBase string) ConfigOption {
	return func(config *Config) {
		config.APIBase = apiBase
	}
}

// WithModel selects the model.
func WithModel(model Model) ConfigOption {
	return func(config *Config) {
		config.Model = model
	}
}

// WithJSONResponse enables JSON response mode.
func WithJSONResponse() ConfigOption {
	return func(config *Config) {
		config.JSONResponse = true
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(config *Config) {
		config.Timeout = timeout
	}
}

// NewConfig builds a validated Config. APIBase and Model fall back to
// DefaultAPIBase and DefaultModel; a missing API key is an error.
func NewConfig(options ...ConfigOption) (Config, error) {
	config := Config{
		APIBase: DefaultAPIBase,
		Model:   DefaultModel,
	}
	for _, option := range options {
		option(&config)
	}
	if config.APIBase == "" {
		config.APIBase = DefaultAPIBase
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ConfigFromEnv is NewConfig seeded from GEMINI_API_KEY, GEMINI_API_BASE_URL
// and GEMINI_MODEL. Explicit options override the environment.
func ConfigFromEnv(options ...ConfigOption) (Config, error) {
	fromEnv := []ConfigOption{
		WithAPIKey(os.Getenv("GEMINI_API_KEY")),
		WithAPIBase(os.Getenv("GEMINI_API_BASE_URL")),
		WithModel(Model(os.Getenv("GEMINI_MODEL"))),
	}
	return NewConfig(append(fromEnv, options...)...)
}

// Validate reports configuration errors.
func (config Config) Validate() error {
	if config.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
