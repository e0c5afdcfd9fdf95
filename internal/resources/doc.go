// Package resources provides MCP resources describing the Google Ads
// adapter. Resources are read-only data sources that MCP clients can fetch
// to learn what can be queried and how the server is configured.
//
//   - gaql://resources: every GAQL resource of the row schema with its
//     selectable field paths, types and enum values
//   - adsmcp://config: the runtime configuration with secrets masked
package resources
