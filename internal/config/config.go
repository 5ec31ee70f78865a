// Package config loads the fungraph command configuration from a YAML file,
// an optional .env file and FUNGRAPH_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/fungraph/providers/tool/mcp"
)

// Supported provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Defaults applied to unset fields.
const (
	DefaultProvider      = ProviderGemini
	DefaultMaxToolRounds = 8
	DefaultTimeout       = 60 * time.Second
	DefaultEnvFile       = ".env"
)

// Environment variables overriding file values.
const (
	EnvProvider      = "FUNGRAPH_PROVIDER"
	EnvModel         = "FUNGRAPH_MODEL"
	EnvSystemPrompt  = "FUNGRAPH_SYSTEM_PROMPT"
	EnvMaxToolRounds = "FUNGRAPH_MAX_TOOL_ROUNDS"
	EnvStream        = "FUNGRAPH_STREAM"
	EnvTimeout       = "FUNGRAPH_TIMEOUT"
)

// Config is the command configuration. API keys are not part of it; the
// providers read them from their own environment variables.
type Config struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model,omitempty"`
	APIBase       string        `yaml:"api_base,omitempty"`
	SystemPrompt  string        `yaml:"system_prompt,omitempty"`
	MaxToolRounds int           `yaml:"max_tool_rounds,omitempty"`
	Stream        bool          `yaml:"stream,omitempty"`
	JSONResponse  bool          `yaml:"json_response,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`

	Tools ToolsConfig `yaml:"tools"`

	// MCPServers are connected at startup and their tools added to the
	// agent.
	MCPServers []mcp.ServerConfig `yaml:"mcp_servers,omitempty"`
}

// ToolsConfig switches the built-in tools.
type ToolsConfig struct {
	WebFetch   bool `yaml:"web_fetch"`
	WebSearch  bool `yaml:"web_search"`
	Calculator bool `yaml:"calculator"`
}

// Enabled reports whether any built-in tool is switched on.
func (tools ToolsConfig) Enabled() bool {
	return tools.WebFetch || tools.WebSearch || tools.Calculator
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Provider:      DefaultProvider,
		MaxToolRounds: DefaultMaxToolRounds,
		Timeout:       DefaultTimeout,
	}
}

// Load builds the configuration. envFile is loaded into the process
// environment without overriding variables already set; a missing
// DefaultEnvFile is ignored. path may be empty to skip the YAML file.
func Load(path string, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		return nil
	}
	err := godotenv.Load(envFile)
	if err == nil {
		return nil
	}
	if envFile == DefaultEnvFile && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", envFile, err)
}

// applyEnv overrides fields from the environment.
func (config *Config) applyEnv(lookup func(string) (string, bool)) error {
	if value, ok := lookup(EnvProvider); ok && value != "" {
		config.Provider = strings.ToLower(value)
	}
	if value, ok := lookup(EnvModel); ok && value != "" {
		config.Model = value
	}
	if value, ok := lookup(EnvSystemPrompt); ok {
		config.SystemPrompt = value
	}
	if value, ok := lookup(EnvMaxToolRounds); ok && value != "" {
		rounds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxToolRounds, value, err)
		}
		config.MaxToolRounds = rounds
	}
	if value, ok := lookup(EnvStream); ok && value != "" {
		stream, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvStream, value, err)
		}
		config.Stream = stream
	}
	if value, ok := lookup(EnvTimeout); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, value, err)
		}
		config.Timeout = timeout
	}
	return nil
}

func (config *Config) applyDefaults() {
	if config.Provider == "" {
		config.Provider = DefaultProvider
	}
	if config.MaxToolRounds == 0 {
		config.MaxToolRounds = DefaultMaxToolRounds
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
}

// Validate reports every invalid field at once.
func (config *Config) Validate() error {
	var errs []error
	switch config.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", config.Provider))
	}
	if config.MaxToolRounds < 0 {
		errs = append(errs, fmt.Errorf("max_tool_rounds must not be negative, got %d", config.MaxToolRounds))
	}
	if config.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", config.Timeout))
	}
	if len(config.MCPServers) > 0 {
		mcpConfig := mcp.Config{Servers: config.MCPServers}
		if err := mcpConfig.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mcp_servers: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
