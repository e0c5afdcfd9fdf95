// Package ads_tools provides MCP tools for querying the Google Ads API.
//
// Tools:
//   - list_accessible_customers: List the customers the credentials can access
//   - search: Build a GAQL query from its clauses and run it
//   - execute_gaql: Run a raw GAQL query
//   - get_campaigns: List the id, name and status of every campaign
//
// Every tool is read-only. Results are returned both as structured content
// and as indented JSON text, with one normalized row per result: a flat
// object keyed by the dotted attribute path.
//
//	search(customer_id: "123-456-7890", fields: ["campaign.id", "metrics.clicks"],
//	       resource: "campaign", conditions: "campaign.status = 'ENABLED'",
//	       orderings: "metrics.clicks DESC", limit: 10)
package ads_tools
