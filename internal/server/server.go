// Package server assembles the MCP server and its stdio serve loop.
package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/pylonmcp/internal/tools"
)

// New creates the MCP server with every tool of ts registered.
func New(ts *tools.Toolset, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "pylonmcp",
		Version: version,
	}, nil)
	ts.Register(srv)
	return srv
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the peer
// disconnects. Nothing else may write to stdout while the server runs.
func Run(ctx context.Context, srv *mcp.Server) error {
	return srv.Run(ctx, &mcp.StdioTransport{})
}
