package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/config"
)

type fakeAdsAPI struct {
	names  []string
	result *ads.SearchResult
	err    error
}

func (f *fakeAdsAPI) ListAccessibleCustomers(context.Context) ([]string, error) {
	return f.names, f.err
}

func (f *fakeAdsAPI) Search(context.Context, string, string) (*ads.SearchResult, error) {
	return f.result, f.err
}

func campaignAPI() *fakeAdsAPI {
	return &fakeAdsAPI{
		names: []string{"customers/1234567890"},
		result: &ads.SearchResult{
			Results: []json.RawMessage{
				json.RawMessage(`{"campaign":{"resourceName":"customers/1234567890/campaigns/123","id":"123","name":"Summer Sale","status":"ENABLED"}}`),
			},
			FieldMask: []string{"campaign.id", "campaign.name", "campaign.status"},
		},
	}
}

func newTestServerContext(t *testing.T, api ads.API) *ServerContext {
	t.Helper()
	var svc *ads.Service
	if api != nil {
		svc = ads.NewService(api)
	}
	sc := NewServerContext(context.Background(), svc, &config.Config{
		DeveloperToken: "dev-token",
		APIVersion:     ads.DefaultAPIVersion,
		Endpoint:       ads.DefaultEndpoint,
		NormalizeMode:  "deep",
	})
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
