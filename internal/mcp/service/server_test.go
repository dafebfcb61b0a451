// Package service tests the MCP server wiring.
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// failingTransport returns a connection error for tests.
type failingTransport struct{}

// Connect returns the configured error for tests.
func (f failingTransport) Connect(context.Context) (mcp.Connection, error) {
	return nil, errors.New("transport failure")
}

func newTestBridge(t *testing.T) *bridge.Bridge {
	t.Helper()
	b, err := bridge.New(nil, nil, bridge.Options{
		RegistryID:   "reg1",
		ProviderName: "Example Labs",
		ProviderURL:  "https://example.com",
	})
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	if _, err := b.RegisterAgent(context.Background(), converter.SimpleAgent{
		ID: "agentX", Name: "Agent X", Description: "public agent", Namespace: "prod", Public: true,
	}); err != nil {
		t.Fatalf("register agent: %v", err)
	}
	return b
}

// TestNewRequiresBridge ensures New rejects a missing bridge.
func TestNewRequiresBridge(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil bridge")
	}
}

// TestNewConfiguresServer ensures New returns a configured server.
func TestNewConfiguresServer(t *testing.T) {
	server, err := New(newTestBridge(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if server == nil || server.mcpServer == nil {
		t.Fatal("expected configured server")
	}
}

// TestServeRequiresConfiguredServer ensures Serve returns an error when unconfigured.
func TestServeRequiresConfiguredServer(t *testing.T) {
	tests := []struct {
		name   string
		server *Server
	}{
		{name: "nil server", server: nil},
		{name: "missing mcp server", server: &Server{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.server.Serve(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestServeStopsOnContext ensures Serve exits when the context is cancelled.
func TestServeStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := New(newTestBridge(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	clientSession, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer clientSession.Close()

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

// TestServeListsFederationTools ensures clients see the registered tools.
func TestServeListsFederationTools(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := New(newTestBridge(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() {
		_ = server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	clientSession, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer clientSession.Close()

	tools, err := clientSession.ListTools(clientCtx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"nanda_index", "nanda_resolve", "nanda_deltas"} {
		if !names[want] {
			t.Fatalf("expected tool %q, got %v", want, names)
		}
	}
}

// TestServeReturnsTransportError ensures transport failures are reported.
func TestServeReturnsTransportError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	server, err := New(newTestBridge(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := server.serveWithTransport(ctx, failingTransport{}); err == nil {
		t.Fatal("expected transport error")
	}
}
