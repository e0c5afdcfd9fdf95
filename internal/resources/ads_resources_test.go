package resources

import (
	"context"
	"encoding/json"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/adsmcp/internal/config"
	"github.com/teemow/adsmcp/internal/server"
)

func newTestServer(t *testing.T, cfg *config.Config) *mcpserver.MCPServer {
	t.Helper()
	sc := server.NewServerContext(context.Background(), nil, cfg)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("adsmcp-test", "test", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterResources(s, sc))
	return s
}

// call sends a JSON-RPC request and returns the encoded response.
func call(t *testing.T, s *mcpserver.MCPServer, method string, params any) map[string]any {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		msg["params"] = params
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	resp := s.HandleMessage(context.Background(), raw)
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func readText(t *testing.T, s *mcpserver.MCPServer, uri string) string {
	t.Helper()
	out := call(t, s, "resources/read", map[string]any{"uri": uri})
	require.Nil(t, out["error"], "unexpected error: %v", out["error"])

	result := out["result"].(map[string]any)
	contents := result["contents"].([]any)
	require.Len(t, contents, 1)
	content := contents[0].(map[string]any)
	assert.Equal(t, uri, content["uri"])
	assert.Equal(t, "application/json", content["mimeType"])
	return content["text"].(string)
}

func TestRegisterResources_List(t *testing.T) {
	s := newTestServer(t, &config.Config{})

	out := call(t, s, "resources/list", nil)
	b, err := json.Marshal(out["result"])
	require.NoError(t, err)

	assert.Contains(t, string(b), SchemaURI)
	assert.Contains(t, string(b), ConfigURI)
}

func TestSchemaResource(t *testing.T) {
	s := newTestServer(t, &config.Config{})

	var doc struct {
		Resources []struct {
			Name   string `json:"name"`
			Fields []struct {
				Path       string   `json:"path"`
				Type       string   `json:"type"`
				EnumValues []string `json:"enum_values"`
			} `json:"fields"`
		} `json:"resources"`
	}
	require.NoError(t, json.Unmarshal([]byte(readText(t, s, SchemaURI)), &doc))
	require.NotEmpty(t, doc.Resources)

	types := map[string]string{}
	enums := map[string][]string{}
	for _, r := range doc.Resources {
		for _, f := range r.Fields {
			types[f.Path] = f.Type
			enums[f.Path] = f.EnumValues
		}
	}
	assert.Equal(t, "INT64", types["campaign.id"])
	assert.Equal(t, "STRING", types["campaign.name"])
	assert.Equal(t, "ENUM", types["campaign.status"])
	assert.Contains(t, enums["campaign.status"], "ENABLED")
}

func TestConfigResource_MasksSecrets(t *testing.T) {
	s := newTestServer(t, &config.Config{
		DeveloperToken:  "dev-token-123",
		LoginCustomerID: "123-456-7890",
		APIVersion:      "v21",
		NormalizeMode:   "deep",
	})

	text := readText(t, s, ConfigURI)
	assert.NotContains(t, text, "dev-token-123")
	assert.NotContains(t, text, "123-456-7890")
	assert.Contains(t, text, `"developer_token": "[token:13 chars]"`)
	assert.Contains(t, text, `"login_customer_id": "******7890"`)
	assert.Contains(t, text, `"normalize_mode": "deep"`)
}

func TestConfigResource_NotLoaded(t *testing.T) {
	s := newTestServer(t, nil)

	out := call(t, s, "resources/read", map[string]any{"uri": ConfigURI})
	assert.NotNil(t, out["error"])
}

func TestRegisterResources_NilServer(t *testing.T) {
	assert.Error(t, RegisterResources(nil, nil))
}
