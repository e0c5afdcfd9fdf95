package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/adsmcp/internal/instrumentation"
	"github.com/teemow/adsmcp/internal/logging"
	"github.com/teemow/adsmcp/internal/normalize"
	"github.com/teemow/adsmcp/internal/resources"
	"github.com/teemow/adsmcp/internal/server"
	"github.com/teemow/adsmcp/internal/tools/ads_tools"
)

const (
	transportStdio = "stdio"

	// authSecretEnv holds the REST API bearer token secret.
	authSecretEnv = "ADSMCP_AUTH_SECRET"

	serverInstructions = `Query the Google Ads API.
Call list_accessible_customers first to find customer IDs. Use get_campaigns
for an overview, search to build a GAQL query from its clauses, or
execute_gaql to run a raw query. Every result row is a flat object keyed by
the selected field paths, e.g. {"campaign.id": 123, "campaign.name": "..."}.
Read gaql://resources for the fields known to the row schema.`
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions holds the serve command flags.
type serveOptions struct {
	Transport     string
	HTTPAddr      string
	APIAddr       string
	NormalizeMode string
	AuthSecret    string
	Stateless     bool
	Metrics       MetricsConfig
}

func (o *serveOptions) validate() error {
	switch o.Transport {
	case transportStdio, server.TransportSSE, server.TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", o.Transport)
	}
	if o.NormalizeMode != "" {
		if _, err := normalize.ParseMode(o.NormalizeMode); err != nil {
			return err
		}
	}
	if o.Transport != transportStdio && o.HTTPAddr == "" {
		return fmt.Errorf("--http-addr is required for transport %s", o.Transport)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Ads
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events on /sse and /message
  - streamable-http: Streamable HTTP on /mcp

The HTTP transports also serve the REST API (/customers, /search,
/campaigns/{customer_id}, /debug) and health probes (/healthz, /readyz).
With stdio, the REST API is started on --api-addr when set.

Configuration:
  Settings are read from google-ads.yaml (see --config) and environment
  variables such as GOOGLE_ADS_DEVELOPER_TOKEN, GOOGLE_ADS_LOGIN_CUSTOMER_ID,
  GOOGLE_ADS_JSON_KEY_FILE_PATH, GOOGLE_CREDENTIALS_BASE64 and
  GOOGLE_ADS_REFRESH_TOKEN. A .env file is loaded first.

Authentication:
  Set --auth-secret or ADSMCP_AUTH_SECRET to require an HS256 bearer token
  on every HTTP endpoint except the health probes. Issue tokens with
  'adsmcp token'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.AuthSecret == "" {
				opts.AuthSecret = os.Getenv(authSecretEnv)
			}
			loadMetricsEnvVars(cmd, &opts.Metrics)
			if err := opts.validate(); err != nil {
				return err
			}
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Transport, "transport", transportStdio, "Transport type: stdio, sse or streamable-http")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&opts.APIAddr, "api-addr", "", "REST API address for the stdio transport (default: disabled)")
	cmd.Flags().StringVar(&opts.NormalizeMode, "normalize-mode", "", "Row normalization mode: deep or shallow. Overrides ADS_NORMALIZE_MODE.")
	cmd.Flags().StringVar(&opts.AuthSecret, "auth-secret", "", "HS256 secret for REST API bearer tokens. Can also use "+authSecretEnv+" env var.")
	cmd.Flags().BoolVar(&opts.Stateless, "stateless", false, "Disable session tracking on the streamable-http transport")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.Metrics.Addr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadMetricsEnvVars applies METRICS_ENABLED and METRICS_ADDR unless the
// matching flag was set explicitly.
func loadMetricsEnvVars(cmd *cobra.Command, metrics *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		switch os.Getenv("METRICS_ENABLED") {
		case "true":
			metrics.Enabled = true
		case "false":
			metrics.Enabled = false
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metrics.Addr = addr
		}
	}
}

func runServe(opts *serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()

	cfg, err := loadConfig(opts.NormalizeMode)
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentationConfig(cfg)

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	// Prometheus metrics get their own port, except in stdio mode.
	if opts.Transport != transportStdio && opts.Metrics.Enabled && provider.MetricsHandler() != nil {
		metricsServer, err := startMetricsServer(opts.Metrics, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	// A missing developer token or credentials must not prevent the server
	// from starting: readiness reports the service as unavailable and the
	// tools explain what is missing.
	service, creds, err := newAdsService(shutdownCtx, cfg, logger, metrics)
	if err != nil {
		logger.Warn("Google Ads service unavailable", logging.Err(err))
	}

	serverContext := server.NewServerContext(shutdownCtx, service, cfg)
	serverContext.SetCredentials(creds)
	if provider.Enabled() {
		serverContext.SetMetrics(metrics)
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	var auth *server.BearerAuth
	if opts.AuthSecret != "" {
		auth, err = server.NewBearerAuth(opts.AuthSecret)
		if err != nil {
			return err
		}
	}

	httpConfig := server.HTTPServerConfig{
		Addr:      opts.HTTPAddr,
		Transport: opts.Transport,
		MCPServer: mcpSrv,
		Stateless: opts.Stateless,
		Auth:      auth,
		API: server.APIConfig{
			Version:   version,
			ToolNames: ads_tools.ToolNames(),
		},
		Logger: logger,
	}

	switch opts.Transport {
	case transportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, serverContext, httpConfig, opts.APIAddr, logger)
	default:
		logger.Info("starting adsmcp MCP server",
			slog.String("transport", opts.Transport),
			slog.String("addr", opts.HTTPAddr),
			slog.Bool("auth", auth != nil),
		)
		httpServer, err := server.NewHTTPServer(serverContext, httpConfig)
		if err != nil {
			return fmt.Errorf("failed to create HTTP server: %w", err)
		}
		return runHTTPServer(shutdownCtx, httpServer, logger)
	}
}

// newMCPServer creates the MCP server with every tool and resource registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("adsmcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
		mcpserver.WithInstructions(serverInstructions),
		mcpserver.WithHooks(server.SessionHooks(sc)),
		mcpserver.WithRecovery(),
		mcpserver.WithLogging(),
	)
	if err := registerAll(mcpSrv, sc); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// registerAll registers all MCP tools and resources
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{
			name: "Google Ads tools",
			register: func() error {
				return ads_tools.RegisterAdsTools(mcpSrv, sc)
			},
		},
		{
			name: "resources",
			register: func() error {
				return resources.RegisterResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return nil
}

func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Wait for metrics server to be ready or fail
	select {
	case <-metricsReady:
		logger.Info("metrics server started", slog.String("addr", metricsServer.ListenAddr()))
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

// runStdioServer serves MCP on stdin/stdout. When apiAddr is set the REST
// API and health probes run alongside it.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, httpConfig server.HTTPServerConfig, apiAddr string, logger *slog.Logger) error {
	apiDone := make(chan error, 1)
	if apiAddr != "" {
		httpConfig.Addr = apiAddr
		httpConfig.Transport = server.TransportNone
		httpConfig.MCPServer = nil
		apiServer, err := server.NewHTTPServer(sc, httpConfig)
		if err != nil {
			return fmt.Errorf("failed to create REST API server: %w", err)
		}
		apiCtx, cancelAPI := context.WithCancel(ctx)
		defer func() {
			cancelAPI()
			if err := <-apiDone; err != nil {
				logger.Warn("REST API server stopped with error", logging.Err(err))
			}
		}()
		go func() {
			apiDone <- runHTTPServer(apiCtx, apiServer, logger)
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv, mcpserver.WithErrorLogger(logging.NewSlogAdapter(logger).StdLogger())); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// runHTTPServer runs srv until ctx is done, then shuts it down gracefully.
func runHTTPServer(ctx context.Context, srv *server.HTTPServer, logger *slog.Logger) error {
	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.StartWithReadySignal(ready); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
