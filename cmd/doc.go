// Package cmd implements the command-line interface for adsmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server (stdio, sse or streamable-http) with the REST API
//   - customers: Print the accessible Google Ads customers as JSON
//   - query: Run a GAQL query and print the normalized rows as JSON
//   - token: Issue a bearer token for the REST API
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command on the stdio transport is the default when no
// subcommand is specified.
package cmd
