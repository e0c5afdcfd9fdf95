package server

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func newTestAPI(t *testing.T, sc *ServerContext, auth *BearerAuth) http.Handler {
	t.Helper()
	r := NewRouter(sc, auth)
	NewAPIHandler(sc, APIConfig{Version: "1.2.3", ToolNames: []string{"list_accessible_customers", "search"}}).RegisterRoutes(r)
	return r
}

func TestAPI_Root(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), nil)

	rr := doRequest(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, true, body["ads_available"])
	assert.Equal(t, []any{"list_accessible_customers", "search"}, body["mcp_tools"])
	assert.Contains(t, body["endpoints"], "POST /search")
}

func TestAPI_Health(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, nil), nil)

	rr := doRequest(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"adsmcp","google_ads":false}`, rr.Body.String())
}

func TestAPI_Customers(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), nil)

	rr := doRequest(t, h, http.MethodGet, "/customers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"accessible_customers":[{"resource_name":"customers/1234567890","customer_id":"1234567890"}],"total_count":1}`,
		rr.Body.String())
}

func TestAPI_Search(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), nil)

	rr := doRequest(t, h, http.MethodPost, "/search",
		`{"customer_id":"123-456-7890","query":"SELECT campaign.id, campaign.name, campaign.status FROM campaign"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{
		"customer_id": "1234567890",
		"query": "SELECT campaign.id, campaign.name, campaign.status FROM campaign",
		"results": [{"campaign.id": 123, "campaign.name": "Summer Sale", "campaign.status": "ENABLED"}],
		"total_results": 1
	}`, rr.Body.String())
}

func TestAPI_Campaigns(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), nil)

	rr := doRequest(t, h, http.MethodGet, "/campaigns/1234567890", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["total_results"])
}

func TestAPI_Errors(t *testing.T) {
	upstream := &googleapi.Error{Code: http.StatusForbidden, Message: "developer token not approved"}

	tests := []struct {
		name       string
		api        *fakeAdsAPI
		method     string
		path       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"malformed body", campaignAPI(), http.MethodPost, "/search", `{"customer_id":`, http.StatusBadRequest, "invalid request body"},
		{"missing query", campaignAPI(), http.MethodPost, "/search", `{"customer_id":"1234567890"}`, http.StatusBadRequest, "customer_id and query are required"},
		{"invalid customer", campaignAPI(), http.MethodGet, "/campaigns/12-34", "", http.StatusBadRequest, "invalid customer ID"},
		{"upstream error", &fakeAdsAPI{err: upstream}, http.MethodGet, "/customers", "", http.StatusBadGateway, "developer token not approved"},
		{"other error", &fakeAdsAPI{err: errors.New("boom")}, http.MethodGet, "/customers", "", http.StatusInternalServerError, "boom"},
		{"no service", nil, http.MethodGet, "/customers", "", http.StatusInternalServerError, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sc *ServerContext
			if tt.api == nil {
				sc = newTestServerContext(t, nil)
			} else {
				sc = newTestServerContext(t, tt.api)
			}
			h := newTestAPI(t, sc, nil)

			rr := doRequest(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			detail, _ := decodeBody(t, rr)["detail"].(string)
			assert.Contains(t, detail, tt.wantDetail)
		})
	}
}

func TestAPI_Debug(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), nil)

	rr := doRequest(t, h, http.MethodGet, "/debug", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	creds := body["credentials"].(map[string]any)
	assert.Equal(t, "none", creds["source"])
	assert.Equal(t, false, creds["valid"])

	cfg := body["config"].(map[string]any)
	assert.Equal(t, "[token:9 chars]", cfg["developer_token"])
	assert.NotContains(t, rr.Body.String(), "dev-token")

	status := body["ads_tools_status"].(map[string]any)
	assert.Equal(t, true, status["service_available"])
	assert.Equal(t, false, status["all_tools_ready"])
}

func TestAPI_CORS(t *testing.T) {
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), nil)

	rr := doRequest(t, h, http.MethodOptions, "/search", "",
		"Origin", "https://example.com",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_Auth(t *testing.T) {
	auth, err := NewBearerAuth(testSecret)
	require.NoError(t, err)
	h := newTestAPI(t, newTestServerContext(t, campaignAPI()), auth)

	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, h, http.MethodGet, "/customers", "").Code)

	token, err := auth.IssueToken("ops", time.Minute)
	require.NoError(t, err)
	rr := doRequest(t, h, http.MethodGet, "/customers", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rr.Code)
}
