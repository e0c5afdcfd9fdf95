package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/adsmcp/internal/logging"
)

// Transport names accepted by HTTPServer.
const (
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"

	// TransportNone serves health probes and the REST API only.
	TransportNone = "none"
)

// HTTP server timeouts. WriteTimeout is left unset so SSE and streaming
// responses are not cut off.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
)

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Transport is TransportSSE, TransportStreamableHTTP or TransportNone.
	Transport string

	// MCPServer is required unless Transport is TransportNone.
	MCPServer *mcpserver.MCPServer

	// Stateless disables session tracking on the streamable HTTP transport.
	Stateless bool

	// Auth protects every non public endpoint when set.
	Auth *BearerAuth

	// API configures the REST API.
	API APIConfig

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// HTTPServer serves the MCP transport, the health probes and the REST API
// on one chi router.
type HTTPServer struct {
	config     HTTPServerConfig
	handler    http.Handler
	health     *HealthChecker
	logger     *slog.Logger
	sse        *mcpserver.SSEServer
	streamable *mcpserver.StreamableHTTPServer

	mu         sync.Mutex
	httpServer *http.Server
	listenAddr string
}

// NewHTTPServer builds the router for config.
func NewHTTPServer(sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Transport == "" {
		config.Transport = TransportNone
	}
	if config.Transport != TransportNone && config.MCPServer == nil {
		return nil, fmt.Errorf("MCP server is required for transport %s", config.Transport)
	}

	s := &HTTPServer{
		config: config,
		health: NewHealthChecker(sc),
		logger: logger,
	}

	r := NewRouter(sc, config.Auth)
	s.health.RegisterHealthEndpoints(r)

	switch config.Transport {
	case TransportSSE:
		s.sse = mcpserver.NewSSEServer(config.MCPServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		r.Handle("/sse", s.sse.SSEHandler())
		r.Handle("/message", s.sse.MessageHandler())

	case TransportStreamableHTTP:
		s.streamable = mcpserver.NewStreamableHTTPServer(config.MCPServer,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithStateLess(config.Stateless),
			mcpserver.WithLogger(logging.NewSlogAdapter(logger)),
		)
		r.Handle("/mcp", s.streamable)

	case TransportNone:

	default:
		return nil, fmt.Errorf("unsupported transport: %s", config.Transport)
	}

	apiConfig := config.API
	if apiConfig.Logger == nil {
		apiConfig.Logger = logger
	}
	NewAPIHandler(sc, apiConfig).RegisterRoutes(r)

	s.handler = r
	return s, nil
}

// Handler returns the router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// HealthChecker returns the health checker backing the probes.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// StartWithReadySignal listens on the configured address and serves until
// Shutdown. ready, when not nil, is closed once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		slog.String("addr", s.listenAddr),
		slog.String("transport", s.config.Transport),
		slog.Bool("auth", s.config.Auth != nil),
	)
	if ready != nil {
		close(ready)
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr returns the bound address once started.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenAddr != "" {
		return s.listenAddr
	}
	return s.config.Addr
}

// Shutdown marks the server not ready, closes MCP sessions and stops the
// HTTP server gracefully.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	var errs []error
	if s.sse != nil {
		if err := s.sse.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("SSE server: %w", err))
		}
	}
	if s.streamable != nil {
		if err := s.streamable.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("streamable HTTP server: %w", err))
		}
	}

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv != nil {
		s.logger.Info("shutting down HTTP server")
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SessionHooks returns MCP hooks that keep the active sessions gauge of sc
// up to date.
func SessionHooks(sc *ServerContext) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, _ mcpserver.ClientSession) {
		if m := sc.Metrics(); m != nil {
			m.IncrementActiveSessions(ctx)
		}
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, _ mcpserver.ClientSession) {
		if m := sc.Metrics(); m != nil {
			m.DecrementActiveSessions(ctx)
		}
	})
	return hooks
}
