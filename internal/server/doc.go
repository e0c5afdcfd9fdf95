// Package server hosts the adsmcp surfaces.
//
// # Key Components
//
// ServerContext carries the dependencies shared by MCP tools, MCP resources
// and the REST API: the Google Ads service, the loaded settings, the resolved
// credentials, and the optional metrics recorder and audit logger.
//
// HTTPServer puts the MCP transport (streamable HTTP on /mcp, or SSE on
// /sse and /message), the Kubernetes health probes and the REST API on a
// single chi router.
//
// APIHandler is the REST API: service information, health, accessible
// customers, GAQL search, campaigns and a credential debug view. It can be
// protected with HS256 bearer tokens.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
