package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/teemow/adsmcp/internal/instrumentation"
)

const (
	// DefaultEndpoint is the Google Ads API REST endpoint.
	DefaultEndpoint = "https://googleads.googleapis.com"

	// DefaultAPIVersion is the Google Ads API version used when none is configured.
	DefaultAPIVersion = "v21"

	// maxPages bounds pagination in case the server keeps returning tokens.
	maxPages = 1000
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Endpoint is the API base URL (default: DefaultEndpoint)
	Endpoint string

	// APIVersion is the path version segment, e.g. "v21" (default: DefaultAPIVersion)
	APIVersion string

	// DeveloperToken is sent in the developer-token header. Required.
	DeveloperToken string

	// LoginCustomerID is sent in the login-customer-id header when set.
	// Needed when accessing client accounts through a manager account.
	LoginCustomerID string

	// HTTPClient must carry Google credentials (see google.NewHTTPClient).
	HTTPClient *http.Client

	// UserAgent is appended to requests when set.
	UserAgent string
}

// Client is a minimal Google Ads API REST client.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	developerToken  string
	loginCustomerID string
	userAgent       string
}

// NewClient creates a Client from cfg.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.DeveloperToken) == "" {
		return nil, ErrMissingDeveloperToken
	}

	loginCustomerID := ""
	if cfg.LoginCustomerID != "" {
		id, err := NormalizeCustomerID(cfg.LoginCustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid login customer ID: %w", err)
		}
		loginCustomerID = id
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient:      httpClient,
		baseURL:         endpoint + "/" + version,
		developerToken:  cfg.DeveloperToken,
		loginCustomerID: loginCustomerID,
		userAgent:       cfg.UserAgent,
	}, nil
}

// BaseURL returns the versioned API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginCustomerID returns the configured manager account, if any.
func (c *Client) LoginCustomerID() string {
	return c.loginCustomerID
}

// SearchResult is the concatenation of every page of a googleAds:search call.
type SearchResult struct {
	// Results holds each GoogleAdsRow in its REST JSON encoding.
	Results []json.RawMessage

	// FieldMask lists the selected fields, in the snake_case form used by GAQL.
	FieldMask []string

	// Pages is the number of pages fetched.
	Pages int
}

type listAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []json.RawMessage `json:"results"`
	NextPageToken string            `json:"nextPageToken"`
	FieldMask     string            `json:"fieldMask"`
}

// ListAccessibleCustomers returns the resource names of every customer the
// credentials can access directly.
func (c *Client) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGoogleAds, instrumentation.OperationList)
	defer span.End()

	var resp listAccessibleCustomersResponse
	if err := c.do(ctx, http.MethodGet, "/customers:listAccessibleCustomers", nil, &resp); err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list accessible customers: %w", err)
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithRowCount(len(resp.ResourceNames)).Build()...)
	instrumentation.SetSpanSuccess(span)
	return resp.ResourceNames, nil
}

// Search runs a GAQL query for customerID and follows nextPageToken until
// every page has been read.
func (c *Client) Search(ctx context.Context, customerID, query string) (*SearchResult, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGoogleAds, instrumentation.OperationSearch,
		instrumentation.NewSpanAttributeBuilder().WithCustomer(customerID).Build()...)
	defer span.End()

	path := "/customers/" + customerID + "/googleAds:search"
	result := &SearchResult{}
	req := searchRequest{Query: query}

	for {
		var resp searchResponse
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, fmt.Errorf("search failed for customer %s: %w", customerID, err)
		}
		result.Pages++
		result.Results = append(result.Results, resp.Results...)
		if result.FieldMask == nil && resp.FieldMask != "" {
			result.FieldMask = parseFieldMask(resp.FieldMask)
		}

		if resp.NextPageToken == "" {
			break
		}
		if resp.NextPageToken == req.PageToken || result.Pages >= maxPages {
			err := fmt.Errorf("pagination did not terminate after %d pages", result.Pages)
			instrumentation.SetSpanError(span, err)
			return nil, err
		}
		req.PageToken = resp.NextPageToken
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithRowCount(len(result.Results)).Build()...)
	instrumentation.SetSpanSuccess(span)
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("developer-token", c.developerToken)
	if c.loginCustomerID != "" {
		req.Header.Set("login-customer-id", c.loginCustomerID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseFieldMask converts the JSON form of a FieldMask
// ("campaign.id,campaignBudget.amountMicros") into GAQL paths
// ("campaign.id", "campaign_budget.amount_micros").
func parseFieldMask(mask string) []string {
	parts := strings.Split(mask, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, snakeCase(p))
		}
	}
	return paths
}

func snakeCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
