package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/adsmcp/internal/instrumentation"
)

func newTestMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("adsmcp-test", "0.0.0", mcpserver.WithToolCapabilities(false))
}

func TestNewHTTPServer_Validation(t *testing.T) {
	sc := newTestServerContext(t, campaignAPI())

	_, err := NewHTTPServer(sc, HTTPServerConfig{Transport: TransportStreamableHTTP})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP server is required")

	_, err = NewHTTPServer(sc, HTTPServerConfig{Transport: "websocket", MCPServer: newTestMCPServer()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")

	s, err := NewHTTPServer(sc, HTTPServerConfig{})
	require.NoError(t, err)
	assert.Equal(t, TransportNone, s.config.Transport)
}

func TestHTTPServer_Routes(t *testing.T) {
	sc := newTestServerContext(t, campaignAPI())

	tests := []struct {
		name      string
		transport string
		path      string
		wantCode  int
	}{
		{"liveness", TransportNone, "/healthz", http.StatusOK},
		{"readiness", TransportNone, "/readyz", http.StatusOK},
		{"rest api", TransportNone, "/customers", http.StatusOK},
		{"no mcp endpoint without transport", TransportNone, "/mcp", http.StatusNotFound},
		{"sse message endpoint registered", TransportSSE, "/message", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewHTTPServer(sc, HTTPServerConfig{Transport: tt.transport, MCPServer: newTestMCPServer()})
			require.NoError(t, err)

			rr := doRequest(t, s.Handler(), http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestHTTPServer_StreamableHTTP(t *testing.T) {
	sc := newTestServerContext(t, campaignAPI())
	s, err := NewHTTPServer(sc, HTTPServerConfig{
		Addr:      "127.0.0.1:0",
		Transport: TransportStreamableHTTP,
		MCPServer: newTestMCPServer(),
	})
	require.NoError(t, err)

	ready := make(chan struct{})
	serverErr := make(chan error, 1)
	go func() { serverErr <- s.StartWithReadySignal(ready) }()

	select {
	case <-ready:
	case err := <-serverErr:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	base := "http://" + s.ListenAddr()

	resp, err := http.Post(base+"/mcp", "application/json", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "adsmcp-test")

	resp, err = http.Get(base + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.False(t, s.HealthChecker().IsReady())

	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSessionHooks(t *testing.T) {
	sc := newTestServerContext(t, nil)
	hooks := SessionHooks(sc)
	require.Len(t, hooks.OnRegisterSession, 1)
	require.Len(t, hooks.OnUnregisterSession, 1)

	ctx := context.Background()
	hooks.RegisterSession(ctx, nil)
	hooks.UnregisterSession(ctx, nil)

	m, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(m)
	hooks.RegisterSession(ctx, nil)
	hooks.UnregisterSession(ctx, nil)
}
