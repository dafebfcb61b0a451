// Package service hosts the MCP server for the bridge's federation tools.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge"
	"github.com/Sharathvc23/nanda-bridge/internal/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "NANDA Bridge MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server over stdio.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server serving the bridge's read surface.
func New(b *bridge.Bridge) (*Server, error) {
	if b == nil {
		return nil, fmt.Errorf("bridge is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, b)
	return &Server{mcpServer: mcpServer}, nil
}

func registerTools(mcpServer *mcp.Server, b *bridge.Bridge) {
	mcp.AddTool(mcpServer, domain.IndexTool(), domain.IndexHandler(b))
	mcp.AddTool(mcpServer, domain.ResolveTool(), domain.ResolveHandler(b))
	mcp.AddTool(mcpServer, domain.DeltasTool(), domain.DeltasHandler(b))
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run creates a server for the bridge and serves it on stdio.
func Run(ctx context.Context, b *bridge.Bridge) error {
	server, err := New(b)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}
