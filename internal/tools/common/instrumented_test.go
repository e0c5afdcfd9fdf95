package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/instrumentation"
	"github.com/teemow/adsmcp/internal/server"
)

func newInstrumentedContext(t *testing.T) (*server.ServerContext, *bytes.Buffer) {
	t.Helper()
	sc := server.NewServerContext(context.Background(), nil, nil)
	t.Cleanup(func() { _ = sc.Shutdown() })

	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(metrics)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	return sc, &buf
}

func requestWithArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_NoInstrumentation(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil, nil)
	defer func() { _ = sc.Shutdown() }()

	called := false
	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.NotNil(t, result)
}

func TestInstrumentedToolHandler_Outcomes(t *testing.T) {
	handlerErr := errors.New("handler error")

	tests := []struct {
		name      string
		handler   ToolHandler
		wantErr   error
		wantLog   []string
		wantLevel string
	}{
		{
			name: "success",
			handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("ok"), nil
			},
			wantLog:   []string{"tool_executed", "tool=test_tool", "success=true"},
			wantLevel: "level=INFO",
		},
		{
			name: "handler error",
			handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, handlerErr
			},
			wantErr:   handlerErr,
			wantLog:   []string{"tool_failed", "success=false", `error="handler error"`},
			wantLevel: "level=WARN",
		},
		{
			name: "error result",
			handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultError("bad input"), nil
			},
			wantLog:   []string{"tool_failed", "success=false"},
			wantLevel: "level=WARN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, buf := newInstrumentedContext(t)
			wrapped := InstrumentedToolHandler("test_tool", sc, tt.handler)

			_, err := wrapped(context.Background(), mcp.CallToolRequest{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			out := buf.String()
			assert.Contains(t, out, tt.wantLevel)
			for _, want := range tt.wantLog {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestInstrumentedToolHandlerWithService_RecordsCustomerAndRows(t *testing.T) {
	sc, buf := newInstrumentedContext(t)

	wrapped := InstrumentedToolHandlerWithService("search", instrumentation.ServiceGoogleAds, instrumentation.OperationSearch, sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			resp := &ads.SearchResponse{CustomerID: "1234567890", TotalResults: 3}
			return mcp.NewToolResultStructured(resp, "3 rows"), nil
		})

	result, err := wrapped(context.Background(), requestWithArgs(map[string]any{"customer_id": "123-456-7890"}))
	require.NoError(t, err)
	require.NotNil(t, result)

	out := buf.String()
	assert.Contains(t, out, "customer_id=******7890")
	assert.NotContains(t, out, "123-456-7890")
	assert.Contains(t, out, "service=googleads")
	assert.Contains(t, out, "operation=search")
	assert.Contains(t, out, "rows=3")
}
