package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/server"
)

// Resource URIs.
const (
	SchemaURI = "gaql://resources"
	ConfigURI = "adsmcp://config"
)

const mimeJSON = "application/json"

// RegisterResources registers the schema and configuration resources.
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil {
		return fmt.Errorf("mcp server is nil")
	}

	schemaResource := mcp.NewResource(
		SchemaURI,
		"GAQL Resources",
		mcp.WithResourceDescription("GAQL resources known to the row schema with their selectable fields. Fields outside the schema can still be queried; their rows are decoded without type information."),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(schemaResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSchema(ctx, request)
	})

	configResource := mcp.NewResource(
		ConfigURI,
		"Server Configuration",
		mcp.WithResourceDescription("Google Ads API settings of this server, with the developer token and login customer ID masked"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConfig(ctx, request, sc)
	})

	return nil
}

type schemaDocument struct {
	Resources []ads.SchemaResource `json:"resources"`
}

func handleSchema(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	resources, err := ads.SchemaResources()
	if err != nil {
		return nil, fmt.Errorf("failed to build row schema: %w", err)
	}
	return jsonContents(request.Params.URI, schemaDocument{Resources: resources})
}

func handleConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	if sc == nil || sc.Config() == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}
	return jsonContents(request.Params.URI, sc.Config().Summary())
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(jsonData),
		},
	}, nil
}
