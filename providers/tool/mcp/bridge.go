package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/tool"
)

const (
	clientName    = "fungraph"
	clientVersion = "1.0.0"
)

// ErrToolFailed is returned when a server reports a tool result as an error.
var ErrToolFailed = errors.New("mcp tool reported an error")

// session is the part of the mcp-go client the bridge relies on.
type session interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Client is an initialized session with one MCP server.
type Client struct {
	name    string
	session session
	logger  *slog.Logger
}

// Connect starts the transport described by server and performs the MCP
// handshake. A nil logger selects slog.Default().
func Connect(ctx context.Context, server ServerConfig, logger *slog.Logger) (*Client, error) {
	if err := server.Validate(); err != nil {
		return nil, err
	}

	var (
		mcpClient *client.Client
		err       error
	)
	switch server.Protocol {
	case ProtocolStdio:
		mcpClient, err = client.NewStdioMCPClient(server.Command, server.environ(), server.Args...)
	case ProtocolSSE:
		mcpClient, err = client.NewSSEMCPClient(server.URL)
		if err == nil {
			if startErr := mcpClient.Start(ctx); startErr != nil {
				_ = mcpClient.Close()
				err = startErr
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start MCP server %s: %w", server.Name, err)
	}

	return initialize(ctx, server.Name, mcpClient, logger)
}

// initialize performs the handshake on an already started session.
func initialize(ctx context.Context, name string, mcpSession session, logger *slog.Logger) (*Client, error) {
	request := mcp.InitializeRequest{}
	request.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	request.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}

	if _, err := mcpSession.Initialize(ctx, request); err != nil {
		_ = mcpSession.Close()
		return nil, fmt.Errorf("failed to initialize MCP server %s: %w", name, err)
	}
	return &Client{name: name, session: mcpSession, logger: logging.OrDefault(logger)}, nil
}

// Name returns the configured server name.
func (c *Client) Name() string {
	return c.name
}

// Tools lists the server's tools as catalog tools. A tool whose input
// schema is not a JSON object is logged and left out.
func (c *Client) Tools(ctx context.Context) ([]tool.Tool, error) {
	result, err := c.session.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools of %s: %w", c.name, err)
	}

	tools := make([]tool.Tool, 0, len(result.Tools))
	for _, remote := range result.Tools {
		parameters, err := inputSchema(remote)
		if err != nil {
			c.logger.Warn("skipping MCP tool",
				logging.AttrMCPServer, c.name,
				logging.AttrToolName, remote.Name,
				logging.AttrError, err,
			)
			continue
		}
		tools = append(tools, &Adapter{
			client:      c,
			name:        remote.Name,
			description: remote.Description,
			parameters:  parameters,
		})
	}
	return tools, nil
}

// Close ends the session and stops a stdio child process.
func (c *Client) Close() error {
	return c.session.Close()
}

// inputSchema wraps the tool's advertised input schema verbatim, so it
// reaches the model and the argument validator unchanged.
func inputSchema(remote mcp.Tool) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(remote)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool: %w", err)
	}

	var decoded struct {
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tool: %w", err)
	}
	if len(decoded.InputSchema) == 0 {
		return nil, errors.New("tool has no input schema")
	}

	parameters, err := jsonschema.FromJSON(decoded.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	return parameters, nil
}

// Adapter exposes one remote tool as a tool.Tool.
type Adapter struct {
	client      *Client
	name        string
	description string
	parameters  *jsonschema.Schema
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Description() string { return a.description }

func (a *Adapter) Parameters() *jsonschema.Schema { return a.parameters }

// Call forwards the call and joins the text content of the result.
func (a *Adapter) Call(ctx context.Context, arguments map[string]any) (string, error) {
	request := mcp.CallToolRequest{}
	request.Params.Name = a.name
	request.Params.Arguments = arguments

	result, err := a.client.session.CallTool(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to call %s on %s: %w", a.name, a.client.name, err)
	}

	var text strings.Builder
	for _, content := range result.Content {
		textContent, ok := mcp.AsTextContent(content)
		if !ok {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(textContent.Text)
	}

	if result.IsError {
		return "", fmt.Errorf("%w: %s", ErrToolFailed, text.String())
	}
	return text.String(), nil
}

// Toolset holds the sessions opened by ConnectAll.
type Toolset struct {
	clients []*Client
	tools   []tool.Tool
}

// ConnectAll connects to every server and collects their tools. On failure
// the sessions opened so far are closed.
func ConnectAll(ctx context.Context, servers []ServerConfig, logger *slog.Logger) (*Toolset, error) {
	logger = logging.OrDefault(logger)
	toolset := &Toolset{}

	for _, server := range servers {
		mcpClient, err := Connect(ctx, server, logger)
		if err != nil {
			_ = toolset.Close()
			return nil, err
		}
		toolset.clients = append(toolset.clients, mcpClient)

		tools, err := mcpClient.Tools(ctx)
		if err != nil {
			_ = toolset.Close()
			return nil, err
		}
		toolset.tools = append(toolset.tools, tools...)

		logger.Info("MCP server connected",
			logging.AttrMCPServer, server.Name,
			logging.AttrMCPProtocol, server.Protocol,
			logging.AttrToolCount, len(tools),
		)
	}
	return toolset, nil
}

// Tools returns the tools of all connected servers.
func (toolset *Toolset) Tools() []tool.Tool {
	return toolset.tools
}

// Close closes every session.
func (toolset *Toolset) Close() error {
	var errs []error
	for _, mcpClient := range toolset.clients {
		if err := mcpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", mcpClient.name, err))
		}
	}
	toolset.clients = nil
	return errors.Join(errs...)
}
