package mcp

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Protocol selects how a server is reached.
type Protocol string

const (
	ProtocolStdio Protocol = "stdio"
	ProtocolSSE   Protocol = "sse"
)

// ServerConfig describes one MCP server.
type ServerConfig struct {
	Name     string   `yaml:"name"`
	Protocol Protocol `yaml:"protocol"`

	// Command, Args and Env start a stdio server.
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	// URL is the SSE endpoint of a remote server.
	URL string `yaml:"url,omitempty"`
}

// Config is the root of an MCP configuration file.
type Config struct {
	Servers []ServerConfig `yaml:"servers"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MCP config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every server entry and reports all problems at once.
func (config *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(config.Servers))
	for i, server := range config.Servers {
		if err := server.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("server %d: %w", i, err))
		}
		if seen[server.Name] {
			errs = append(errs, fmt.Errorf("server %d: duplicate name %q", i, server.Name))
		}
		seen[server.Name] = true
	}
	return errors.Join(errs...)
}

// Validate checks that the fields required by the protocol are set.
func (server ServerConfig) Validate() error {
	if server.Name == "" {
		return errors.New("name is required")
	}
	switch server.Protocol {
	case ProtocolStdio:
		if server.Command == "" {
			return fmt.Errorf("%s: command is required for stdio", server.Name)
		}
	case ProtocolSSE:
		if server.URL == "" {
			return fmt.Errorf("%s: url is required for sse", server.Name)
		}
	default:
		return fmt.Errorf("%s: unknown protocol %q", server.Name, server.Protocol)
	}
	return nil
}

// environ renders Env as KEY=VALUE pairs in key order.
func (server ServerConfig) environ() []string {
	environment := make([]string, 0, len(server.Env))
	for key, value := range server.Env {
		environment = append(environment, key+"="+value)
	}
	sort.Strings(environment)
	return environment
}
