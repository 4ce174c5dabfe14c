package tools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const mcpServerName = "stx-trader"

// MCPServer exposes every registered tool over the Model Context Protocol.
func (r *Registry) MCPServer(version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: mcpServerName, Version: version}, nil)
	for _, t := range r.List() {
		t.addMCP(s)
	}
	return s
}

// ServeStdio blocks serving MCP over stdin/stdout until ctx is done.
func (r *Registry) ServeStdio(ctx context.Context, version string) error {
	return r.MCPServer(version).Run(ctx, &mcp.StdioTransport{})
}

// MCPHandler serves MCP over streamable HTTP.
func (r *Registry) MCPHandler(version string) http.Handler {
	s := r.MCPServer(version)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s }, nil)
}
