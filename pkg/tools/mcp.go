package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JoshuaC215/agent-service-toolkit/internal/version"
)

// MCPSource discovers and serves tools from a remote MCP server over the
// streamable-HTTP transport. A bearer token, when set, rides along on
// every request.
type MCPSource struct {
	name  string
	url   string
	token string

	mu        sync.Mutex
	client    *client.Client
	tools     []Tool
	connected bool
}

// NewMCPSource builds a source for one MCP server. token may be empty for
// servers without auth.
func NewMCPSource(name, url, token string) *MCPSource {
	return &MCPSource{name: name, url: url, token: token}
}

// Connect establishes the session and discovers the server's tools.
func (s *MCPSource) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}

	var opts []transport.StreamableHTTPCOption
	if s.token != "" {
		opts = append(opts, transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + s.token,
		}))
	}
	mcpClient, err := client.NewStreamableHttpClient(s.url, opts...)
	if err != nil {
		return fmt.Errorf("creating MCP client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("starting MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "agent-service-toolkit",
		Version: version.Version,
	}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("initializing MCP session: %w", err)
	}

	listResp, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("listing MCP tools: %w", err)
	}

	tools := make([]Tool, 0, len(listResp.Tools))
	for _, t := range listResp.Tools {
		tools = append(tools, &mcpTool{
			source:      s,
			name:        t.Name,
			description: t.Description,
			schema:      mcpSchemaToMap(t.InputSchema),
		})
	}

	s.client = mcpClient
	s.tools = tools
	s.connected = true
	slog.Info("connected to MCP server", "name", s.name, "url", s.url, "tools", len(tools))
	return nil
}

// Tools returns the discovered tools. Empty before Connect succeeds.
func (s *MCPSource) Tools() []Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools
}

// Close tears down the session.
func (s *MCPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	s.connected = false
	s.tools = nil
	return err
}

func (s *MCPSource) call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	mcpClient := s.client
	s.mu.Unlock()
	if mcpClient == nil {
		return nil, fmt.Errorf("MCP source %q is not connected", s.name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return mcpClient.CallTool(ctx, req)
}

type mcpTool struct {
	source      *MCPSource
	name        string
	description string
	schema      map[string]any
}

func (t *mcpTool) Name() string { return t.name }

func (t *mcpTool) Description() string { return t.description }

func (t *mcpTool) Parameters() map[string]any { return t.schema }

func (t *mcpTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	resp, err := t.source.call(ctx, t.name, args)
	if err != nil {
		return "", fmt.Errorf("calling MCP tool %q: %w", t.name, err)
	}

	text := collectText(resp)
	if resp.IsError {
		if text == "" {
			text = "unknown error"
		}
		return "", fmt.Errorf("MCP tool %q failed: %s", t.name, text)
	}
	return text, nil
}

func collectText(resp *mcp.CallToolResult) string {
	var out string
	for _, content := range resp.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			if out != "" {
				out += "\n"
			}
			out += tc.Text
		}
	}
	return out
}

// mcpSchemaToMap flattens the typed schema into the JSON Schema map the
// model providers expect.
func mcpSchemaToMap(schema mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	return out
}
