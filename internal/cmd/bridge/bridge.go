// Package bridge parses bridge command flags and launches the service.
package bridge

import (
	"context"
	"flag"
	"fmt"

	server "github.com/Sharathvc23/nanda-bridge/internal/app"
	mcpservice "github.com/Sharathvc23/nanda-bridge/internal/mcp/service"
	entrypoint "github.com/Sharathvc23/nanda-bridge/internal/platform/cmd"
)

// Config holds bridge command configuration.
type Config struct {
	HTTPAddr  string `env:"NANDA_BRIDGE_HTTP_ADDR" envDefault:"localhost:8080"`
	GRPCAddr  string `env:"NANDA_BRIDGE_GRPC_ADDR" envDefault:"localhost:8090"`
	Transport string `env:"NANDA_BRIDGE_TRANSPORT" envDefault:"http"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The bridge HTTP server address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "The bridge gRPC health server address")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: http or stdio")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the bridge federation service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBridge, func(ctx context.Context) error {
		switch cfg.Transport {
		case "http":
			return server.Run(ctx, cfg.HTTPAddr, cfg.GRPCAddr)
		case "stdio":
			return runWithMCP(ctx, cfg)
		default:
			return fmt.Errorf("unknown transport %q", cfg.Transport)
		}
	})
}

// runWithMCP serves the HTTP and gRPC listeners in the background while the
// MCP server owns stdio. Whichever side stops first stops the other.
func runWithMCP(ctx context.Context, cfg Config) error {
	srv, err := server.New(cfg.HTTPAddr, cfg.GRPCAddr)
	if err != nil {
		return err
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(serveCtx)
	}()

	mcpErr := mcpservice.Run(serveCtx, srv.Bridge())
	cancel()
	if err := <-serveErr; mcpErr == nil {
		mcpErr = err
	}
	return mcpErr
}
