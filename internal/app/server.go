// Package server wires the bridge runtime and HTTP/gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/api/rest"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/catalog"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	bridgesqlite "github.com/Sharathvc23/nanda-bridge/internal/bridge/storage/sqlite"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

type serverEnv struct {
	DBPath       string `env:"NANDA_BRIDGE_DB_PATH"`
	RegistryID   string `env:"NANDA_BRIDGE_REGISTRY_ID"`
	ProviderName string `env:"NANDA_BRIDGE_PROVIDER_NAME"`
	ProviderURL  string `env:"NANDA_BRIDGE_PROVIDER_URL"`
	BaseURL      string `env:"NANDA_BRIDGE_BASE_URL"`
	MaxDeltas    int    `env:"NANDA_BRIDGE_MAX_DELTAS"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.RegistryID) == "" {
		cfg.RegistryID = "nanda-bridge"
	}
	if strings.TrimSpace(cfg.ProviderName) == "" {
		cfg.ProviderName = "NANDA Bridge"
	}
	if strings.TrimSpace(cfg.ProviderURL) == "" {
		cfg.ProviderURL = "https://localhost"
	}
	if cfg.MaxDeltas <= 0 {
		cfg.MaxDeltas = delta.DefaultMaxDeltas
	}
	return cfg
}

// Server hosts the federation HTTP API, a health-only gRPC endpoint, and
// the storage lifecycle.
type Server struct {
	httpListener net.Listener
	httpServer   *http.Server
	grpcListener net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *bridgesqlite.Store
	bridge       *bridge.Bridge
}

// New creates a configured bridge server for the provided addresses.
func New(httpAddr, grpcAddr string) (*Server, error) {
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpListener.Close()
		return nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
	}

	srvEnv := loadServerEnv()
	b, store, err := buildBridge(srvEnv)
	if err != nil {
		_ = httpListener.Close()
		_ = grpcListener.Close()
		return nil, err
	}

	restService, err := rest.New(b)
	if err != nil {
		_ = httpListener.Close()
		_ = grpcListener.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		httpListener: httpListener,
		httpServer:   &http.Server{Handler: restService.Handler()},
		grpcListener: grpcListener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		bridge:       b,
	}, nil
}

func buildBridge(srvEnv serverEnv) (*bridge.Bridge, *bridgesqlite.Store, error) {
	base, err := delta.NewStore(srvEnv.MaxDeltas)
	if err != nil {
		return nil, nil, err
	}

	var (
		store *bridgesqlite.Store
		conv  converter.Converter
		feed  *delta.PersistentStore
	)
	if strings.TrimSpace(srvEnv.DBPath) != "" {
		store, err = openBridgeStore(srvEnv.DBPath)
		if err != nil {
			return nil, nil, err
		}
		conv, err = catalog.New(store)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		feed = delta.NewPersistentStore(base, store, store)
		if err := feed.Restore(context.Background()); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("restore delta feed: %w", err)
		}
	} else {
		feed = delta.NewPersistentStore(base, nil, nil)
	}

	b, err := bridge.New(conv, feed, bridge.Options{
		RegistryID:   srvEnv.RegistryID,
		ProviderName: srvEnv.ProviderName,
		ProviderURL:  srvEnv.ProviderURL,
		BaseURL:      srvEnv.BaseURL,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	return b, store, nil
}

// Bridge returns the composed bridge, for seeding agents and MCP serving.
func (s *Server) Bridge() *bridge.Bridge {
	if s == nil {
		return nil
	}
	return s.bridge
}

// HTTPAddr returns the HTTP listener address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the gRPC listener address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run creates and serves a bridge server until context cancellation.
func Run(ctx context.Context, httpAddr, grpcAddr string) error {
	server, err := New(httpAddr, grpcAddr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts both servers until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("bridge http server listening at %v", s.httpListener.Addr())
	log.Printf("bridge grpc server listening at %v", s.grpcListener.Addr())

	serveErr := make(chan error, 2)
	go func() {
		err := s.httpServer.Serve(s.httpListener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()
	go func() {
		err := s.grpcServer.Serve(s.grpcListener)
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		serveErr <- err
	}()

	select {
	case <-ctx.Done():
		s.shutdown()
		err := <-serveErr
		if second := <-serveErr; err == nil {
			err = second
		}
		if err != nil {
			return fmt.Errorf("serve bridge: %w", err)
		}
		return nil
	case err := <-serveErr:
		s.shutdown()
		if second := <-serveErr; err == nil {
			err = second
		}
		if err != nil {
			return fmt.Errorf("serve bridge: %w", err)
		}
		return nil
	}
}

func (s *Server) shutdown() {
	if s.health != nil {
		s.health.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown http server: %v", err)
		}
	}
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}

// Close releases bridge server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close bridge store: %v", err)
		}
	}
}

func openBridgeStore(path string) (*bridgesqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := bridgesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bridge sqlite store: %w", err)
	}
	return store, nil
}
