package ads_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/gaql"
	"github.com/teemow/adsmcp/internal/instrumentation"
	"github.com/teemow/adsmcp/internal/server"
	"github.com/teemow/adsmcp/internal/tools/common"
)

// Tool names.
const (
	ToolListAccessibleCustomers = "list_accessible_customers"
	ToolSearch                  = "search"
	ToolExecuteGAQL             = "execute_gaql"
	ToolGetCampaigns            = "get_campaigns"
)

// ToolNames returns the names of every tool registered by RegisterAdsTools.
func ToolNames() []string {
	return []string{ToolListAccessibleCustomers, ToolSearch, ToolExecuteGAQL, ToolGetCampaigns}
}

const customerIDDescription = "Google Ads customer ID, with or without dashes (e.g. '123-456-7890')"

// RegisterAdsTools registers all Google Ads tools with the MCP server
func RegisterAdsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil {
		return fmt.Errorf("mcp server is nil")
	}
	if sc == nil {
		return fmt.Errorf("server context is nil")
	}

	listCustomersTool := mcp.NewTool(ToolListAccessibleCustomers,
		mcp.WithDescription("List the Google Ads customers the configured credentials can access directly"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(listCustomersTool, common.InstrumentedToolHandlerWithService(
		ToolListAccessibleCustomers, instrumentation.ServiceGoogleAds, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccessibleCustomers(ctx, request, sc)
		}))

	searchTool := mcp.NewTool(ToolSearch,
		mcp.WithDescription("Build a GAQL query from its clauses, run it and return one normalized row per result keyed by the selected fields"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString(common.ArgCustomerID,
			mcp.Required(),
			mcp.Description(customerIDDescription),
		),
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description("Field path (string, comma separated) or array of field paths to select, e.g. ['campaign.id', 'metrics.clicks']"),
		),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Resource to select FROM, e.g. 'campaign'"),
		),
		mcp.WithString("conditions",
			mcp.Description("WHERE condition (string) or array of conditions joined with AND"),
		),
		mcp.WithString("orderings",
			mcp.Description("ORDER BY item (string) or array of items, e.g. 'metrics.clicks DESC'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows (default: no limit)"),
			mcp.Min(0),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService(
		ToolSearch, instrumentation.ServiceGoogleAds, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	executeTool := mcp.NewTool(ToolExecuteGAQL,
		mcp.WithDescription("Run a raw GAQL query and return one normalized row per result"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString(common.ArgCustomerID,
			mcp.Required(),
			mcp.Description(customerIDDescription),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("GAQL query, e.g. 'SELECT campaign.id, campaign.name FROM campaign LIMIT 10'"),
		),
	)
	s.AddTool(executeTool, common.InstrumentedToolHandlerWithService(
		ToolExecuteGAQL, instrumentation.ServiceGoogleAds, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExecuteGAQL(ctx, request, sc)
		}))

	campaignsTool := mcp.NewTool(ToolGetCampaigns,
		mcp.WithDescription("List the id, name and status of every campaign of a customer"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString(common.ArgCustomerID,
			mcp.Required(),
			mcp.Description(customerIDDescription),
		),
	)
	s.AddTool(campaignsTool, common.InstrumentedToolHandlerWithService(
		ToolGetCampaigns, instrumentation.ServiceGoogleAds, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCampaigns(ctx, request, sc)
		}))

	return nil
}

func adsService(sc *server.ServerContext) (*ads.Service, error) {
	service := sc.AdsService()
	if service == nil {
		return nil, fmt.Errorf("Google Ads service is not configured: set GOOGLE_ADS_DEVELOPER_TOKEN and credentials, then restart the server")
	}
	return service, nil
}

func handleListAccessibleCustomers(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	service, err := adsService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := service.ListAccessibleCustomers(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accessible customers: %v", err)), nil
	}
	return structuredResult(result)
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	customerID := common.GetCustomerIDFromArgs(args)
	if customerID == "" {
		return mcp.NewToolResultError("customer_id is required"), nil
	}

	fields, err := common.ParseFieldList(args["fields"], "fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conditions, err := common.ParseOptionalStringOrArray(args["conditions"], "conditions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	orderings, err := common.ParseOptionalStringOrArray(args["orderings"], "orderings")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := gaql.Query{
		Fields:     fields,
		Resource:   request.GetString("resource", ""),
		Conditions: conditions,
		Orderings:  orderings,
		Limit:      request.GetInt("limit", 0),
	}

	service, err := adsService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := service.SearchQuery(ctx, customerID, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	return structuredResult(resp)
}

func handleExecuteGAQL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	customerID := common.GetCustomerIDFromArgs(request.GetArguments())
	if customerID == "" {
		return mcp.NewToolResultError("customer_id is required"), nil
	}
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	service, err := adsService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := service.Search(ctx, customerID, query, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Query failed: %v", err)), nil
	}
	return structuredResult(resp)
}

func handleGetCampaigns(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	customerID := common.GetCustomerIDFromArgs(request.GetArguments())
	if customerID == "" {
		return mcp.NewToolResultError("customer_id is required"), nil
	}

	service, err := adsService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := service.Campaigns(ctx, customerID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get campaigns: %v", err)), nil
	}
	return structuredResult(resp)
}

// structuredResult returns v as structured content with its indented JSON
// as the text fallback.
func structuredResult(v any) (*mcp.CallToolResult, error) {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultStructured(v, string(text)), nil
}
