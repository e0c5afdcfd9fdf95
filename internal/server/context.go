package server

import (
	"context"
	"sync"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/config"
	"github.com/teemow/adsmcp/internal/google"
	"github.com/teemow/adsmcp/internal/instrumentation"
)

// ServerContext holds the dependencies shared by every surface of the server:
// MCP tools, MCP resources and the REST API.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	service     *ads.Service
	config      *config.Config
	credentials *google.Credentials
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context. service may be nil when the
// Google Ads client could not be created; readiness checks report that.
func NewServerContext(ctx context.Context, service *ads.Service, cfg *config.Config) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		service: service,
		config:  cfg,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// AdsService returns the Google Ads service, or nil if none is configured.
func (sc *ServerContext) AdsService() *ads.Service {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.service
}

// Config returns the loaded settings, or nil.
func (sc *ServerContext) Config() *config.Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// Credentials returns the resolved Google credentials, or nil.
func (sc *ServerContext) Credentials() *google.Credentials {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.credentials
}

// SetCredentials records the resolved Google credentials.
func (sc *ServerContext) SetCredentials(creds *google.Credentials) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.credentials = creds
}

// Metrics returns the metrics recorder, or nil if instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
