// Package mcp bridges tools served by Model Context Protocol servers into
// the fungraph tool catalog.
//
// Servers are described in YAML and reached over stdio (a child process) or
// SSE. [Connect] opens a session, and each remote tool becomes a [tool.Tool]
// whose calls are forwarded over that session.
//
//	config, err := mcp.LoadConfig("mcp.yaml")
//	toolset, err := mcp.ConnectAll(ctx, config.Servers, logger)
//	defer toolset.Close()
//	catalog := tool.NewCatalogWithTools(toolset.Tools()...)
package mcp
