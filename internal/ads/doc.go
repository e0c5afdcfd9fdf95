// Package ads talks to the Google Ads API over its REST transport and turns
// search results into normalized rows.
//
// The Client handles the wire protocol: developer-token and
// login-customer-id headers, paging through googleAds:search and decoding
// Google API errors. Rows are decoded against a dynamic GoogleAdsRow schema
// (see RowDescriptor) so enum fields keep their symbolic names, and fall
// back to google.protobuf.Struct when a row uses fields outside the schema.
//
// Service is the handle shared by the MCP tools, the REST API and the CLI.
// It validates customer IDs, picks the attribute list for each query and
// runs every row through the normalize package.
package ads
