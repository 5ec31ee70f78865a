package openai

import (
	"errors"
	"os"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// ErrMissingAPIKey is returned when a configuration has no API key.
var ErrMissingAPIKey = errors.New("API key must be set")

// Config holds the connection settings of a Provider.
type Config struct {
	APIKey string
	// BaseURL overrides the SDK's default endpoint when set.
	BaseURL string
	Model   string
	// MaxRetries is handed to the SDK; nil keeps the SDK default.
	MaxRetries *int
}

// ConfigFromEnv reads OPENAI_API_KEY, OPENAI_API_BASE_URL and OPENAI_MODEL.
func ConfigFromEnv() (Config, error) {
	config := Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_API_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return config, config.Validate()
}

// Validate reports configuration errors.
func (config Config) Validate() error {
	if config.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
