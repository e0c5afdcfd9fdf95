// Package instrumentation provides OpenTelemetry instrumentation for the
// adsmcp server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, Google Ads API calls and row normalization
//   - Distributed tracing for tool invocations and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active MCP sessions
//
// Google Ads API Metrics:
//   - google_api_operations_total: Counter of API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of API operation durations
//
// Row Normalization Metrics:
//   - rows_normalized_total: Counter of normalized rows by resource
//   - row_normalization_fallbacks_total: Counter of rows degraded to string values by resource
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Google Ads API calls (google.googleads.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: adsmcp)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGoogleAds,
//		instrumentation.OperationSearch, instrumentation.StatusSuccess, time.Since(start))
//	recorder.RecordRowsNormalized(ctx, "campaign", len(rows), fallbacks)
package instrumentation
