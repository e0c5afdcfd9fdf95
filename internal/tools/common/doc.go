// Package common provides shared utilities for MCP tool implementations:
// the instrumented handler wrapper that records metrics, spans and audit
// logs for every tool call, and argument parsing helpers.
package common
