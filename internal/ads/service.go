package ads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/adsmcp/internal/gaql"
	"github.com/teemow/adsmcp/internal/instrumentation"
	"github.com/teemow/adsmcp/internal/logging"
	"github.com/teemow/adsmcp/internal/normalize"
)

// API is the part of the Google Ads API the Service depends on. *Client
// implements it.
type API interface {
	ListAccessibleCustomers(ctx context.Context) ([]string, error)
	Search(ctx context.Context, customerID, query string) (*SearchResult, error)
}

// Customer is one accessible customer.
type Customer struct {
	ResourceName string `json:"resource_name"`
	CustomerID   string `json:"customer_id"`
}

// CustomersResult is the result of ListAccessibleCustomers.
type CustomersResult struct {
	AccessibleCustomers []Customer `json:"accessible_customers"`
	TotalCount          int        `json:"total_count"`
}

// RowCount returns the number of customers.
func (r *CustomersResult) RowCount() int {
	return r.TotalCount
}

// SearchResponse is the result of a search: one normalized row per result.
type SearchResponse struct {
	CustomerID   string           `json:"customer_id"`
	Query        string           `json:"query"`
	Results      []*normalize.Row `json:"results"`
	TotalResults int              `json:"total_results"`
}

// RowCount returns the number of rows.
func (r *SearchResponse) RowCount() int {
	return r.TotalResults
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNormalizer sets the row normalizer (default: normalize.New()).
func WithNormalizer(n *normalize.Normalizer) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service runs Google Ads operations and normalizes their results. It is
// safe for concurrent use.
type Service struct {
	api        API
	normalizer *normalize.Normalizer
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// NewService creates a Service on top of api.
func NewService(api API, opts ...ServiceOption) *Service {
	s := &Service{
		api:        api,
		normalizer: normalize.New(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeMode returns the mode of the row normalizer.
func (s *Service) NormalizeMode() normalize.Mode {
	return s.normalizer.Mode()
}

// ListAccessibleCustomers lists the customers the credentials can access.
func (s *Service) ListAccessibleCustomers(ctx context.Context) (*CustomersResult, error) {
	start := time.Now()
	names, err := s.api.ListAccessibleCustomers(ctx)
	s.recordOperation(ctx, instrumentation.OperationList, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	result := &CustomersResult{AccessibleCustomers: make([]Customer, 0, len(names))}
	for _, name := range names {
		result.AccessibleCustomers = append(result.AccessibleCustomers, Customer{
			ResourceName: name,
			CustomerID:   CustomerIDFromResourceName(name),
		})
	}
	result.TotalCount = len(result.AccessibleCustomers)
	return result, nil
}

// Search runs query for customerID and normalizes every row.
//
// attributes selects the keys of each normalized row. When empty, the
// response field mask is used, then the SELECT list of query.
func (s *Service) Search(ctx context.Context, customerID, query string, attributes []string) (*SearchResponse, error) {
	id, err := NormalizeCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	logger := logging.WithCustomer(logging.WithOperation(s.logger, "googleads.search"), id)

	start := time.Now()
	result, err := s.api.Search(ctx, id, query)
	s.recordOperation(ctx, instrumentation.OperationSearch, err, time.Since(start))
	if err != nil {
		logger.Error("search failed", logging.Query(query), logging.Err(err))
		return nil, err
	}

	attrs := attributes
	if len(attrs) == 0 {
		attrs = result.FieldMask
	}
	if len(attrs) == 0 {
		attrs, err = gaql.SelectFields(query)
		if err != nil {
			return nil, fmt.Errorf("cannot determine result attributes: %w", err)
		}
	}

	rows, err := DecodeRows(result.Results, attrs)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse{
		CustomerID: id,
		Query:      query,
		Results:    make([]*normalize.Row, 0, len(rows)),
	}
	degraded := 0
	for _, row := range rows {
		nr := s.normalizer.Row(row, attrs)
		if nr.Degraded() {
			degraded++
		}
		resp.Results = append(resp.Results, nr)
	}
	resp.TotalResults = len(resp.Results)

	resource, _ := gaql.FromResource(query)
	if s.metrics != nil {
		s.metrics.RecordRowsNormalized(ctx, resource, resp.TotalResults, degraded)
	}
	logger.Debug("search completed",
		logging.Query(query),
		slog.Int("rows", resp.TotalResults),
		slog.Int("degraded_rows", degraded),
		slog.Int("pages", result.Pages),
	)
	return resp, nil
}

// SearchQuery builds q and searches with its fields as attributes.
func (s *Service) SearchQuery(ctx context.Context, customerID string, q gaql.Query) (*SearchResponse, error) {
	stmt, err := q.Build()
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, customerID, stmt, q.AttributeFields())
}

// Campaigns lists the id, name and status of every campaign of customerID.
func (s *Service) Campaigns(ctx context.Context, customerID string) (*SearchResponse, error) {
	return s.Search(ctx, customerID, gaql.CampaignsQuery, nil)
}

func (s *Service) recordOperation(ctx context.Context, operation string, err error, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGoogleAds, operation, status, duration)
}
