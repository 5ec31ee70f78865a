package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leofalp/fungraph/internal/config"
	"github.com/leofalp/fungraph/patterns/agent"
	"github.com/leofalp/fungraph/providers/ai"
	"github.com/leofalp/fungraph/providers/ai/gemini"
	"github.com/leofalp/fungraph/providers/ai/openai"
	"github.com/leofalp/fungraph/providers/tool"
	"github.com/leofalp/fungraph/providers/tool/calculator"
	"github.com/leofalp/fungraph/providers/tool/duckduckgo"
	"github.com/leofalp/fungraph/providers/tool/mcp"
	"github.com/leofalp/fungraph/providers/tool/webfetch"
)

// newProvider builds the provider selected by the configuration. API keys
// come from the provider's environment variables.
func (application *app) newProvider() (ai.Provider, error) {
	cfg := application.config
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		providerConfig, err := openai.ConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", err)
		}
		if cfg.Model != "" {
			providerConfig.Model = cfg.Model
		}
		if cfg.APIBase != "" {
			providerConfig.BaseURL = cfg.APIBase
		}
		provider, err := openai.New(providerConfig,
			openai.WithHTTPClient(httpClient),
			openai.WithLogger(application.logger),
			openai.WithMetrics(application.metrics),
		)
		if err != nil {
			return nil, err
		}
		provider.AddOptions(ai.CallOptions{JSONResponse: cfg.JSONResponse})
		return provider, nil

	default:
		options := []gemini.ConfigOption{gemini.WithTimeout(cfg.Timeout)}
		if cfg.Model != "" {
			options = append(options, gemini.WithModel(gemini.Model(cfg.Model)))
		}
		if cfg.APIBase != "" {
			options = append(options, gemini.WithAPIBase(cfg.APIBase))
		}
		if cfg.JSONResponse {
			options = append(options, gemini.WithJSONResponse())
		}
		providerConfig, err := gemini.ConfigFromEnv(options...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", err)
		}
		return gemini.New(providerConfig,
			gemini.WithHTTPClient(httpClient),
			gemini.WithLogger(application.logger),
			gemini.WithMetrics(application.metrics),
		)
	}
}

// newCatalog collects the built-in tools and the tools of configured MCP
// servers. The returned function closes the MCP sessions.
func (application *app) newCatalog(ctx context.Context) (*tool.Catalog, func(), error) {
	cfg := application.config
	catalog := tool.NewCatalog()
	if cfg.Tools.WebFetch {
		catalog.AddTools(webfetch.NewTool())
	}
	if cfg.Tools.WebSearch {
		catalog.AddTools(duckduckgo.NewTool())
	}
	if cfg.Tools.Calculator {
		catalog.AddTools(calculator.NewTool())
	}

	if len(cfg.MCPServers) == 0 {
		return catalog, func() {}, nil
	}

	toolset, err := mcp.ConnectAll(ctx, cfg.MCPServers, application.logger)
	if err != nil {
		return nil, nil, err
	}
	catalog.AddTools(toolset.Tools()...)

	closeToolset := func() {
		if err := toolset.Close(); err != nil {
			application.logger.Warn("failed to close MCP sessions", "error", err)
		}
	}
	return catalog, closeToolset, nil
}

// newAgent wires provider, tools and configuration into an agent.
func (application *app) newAgent(ctx context.Context, streaming bool) (*agent.Agent, func(), error) {
	provider, err := application.newProvider()
	if err != nil {
		return nil, nil, err
	}
	catalog, closeTools, err := application.newCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := application.config
	assistant := agent.New(provider,
		agent.WithSystemPrompt(cfg.SystemPrompt),
		agent.WithCatalog(catalog),
		agent.WithMaxToolRounds(cfg.MaxToolRounds),
		agent.WithStreaming(streaming),
		agent.WithLogger(application.logger),
		agent.WithMetrics(application.metrics),
	)
	return assistant, closeTools, nil
}
