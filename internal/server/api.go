package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"google.golang.org/api/googleapi"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/gaql"
	"github.com/teemow/adsmcp/internal/google"
	"github.com/teemow/adsmcp/internal/logging"
)

const serviceName = "adsmcp"

// maxRequestBody bounds the size of JSON request bodies.
const maxRequestBody = 1 << 20

// APIConfig configures the REST API.
type APIConfig struct {
	// Version is reported by GET /.
	Version string

	// ToolNames lists the MCP tools served alongside the API.
	ToolNames []string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// APIHandler serves the REST API.
type APIHandler struct {
	sc        *ServerContext
	version   string
	toolNames []string
	logger    *slog.Logger
}

// NewAPIHandler creates the REST API handler.
func NewAPIHandler(sc *ServerContext, cfg APIConfig) *APIHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		sc:        sc,
		version:   cfg.Version,
		toolNames: cfg.ToolNames,
		logger:    logger,
	}
}

// RegisterRoutes registers the API endpoints on r.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Get("/customers", h.handleCustomers)
	r.Post("/search", h.handleSearch)
	r.Get("/campaigns/{customer_id}", h.handleCampaigns)
	r.Get("/debug", h.handleDebug)
}

// NewRouter returns a chi router with the common middleware stack: request
// IDs, real IP, panic recovery, permissive CORS, HTTP metrics and, when auth
// is not nil, bearer token validation.
func NewRouter(sc *ServerContext, auth *BearerAuth) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         300,
	}))
	r.Use(httpMetrics(sc))
	if auth != nil {
		r.Use(auth.Middleware)
	}
	return r
}

// httpMetrics records every request under its route pattern.
func httpMetrics(sc *ServerContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics := sc.Metrics()
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, path, status, time.Since(start))
		})
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type rootResponse struct {
	Message          string   `json:"message"`
	Version          string   `json:"version"`
	Status           string   `json:"status"`
	AdsAvailable     bool     `json:"ads_available"`
	CredentialSource string   `json:"credential_source,omitempty"`
	MCPTools         []string `json:"mcp_tools"`
	Endpoints        []string `json:"endpoints"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	GoogleAds bool   `json:"google_ads"`
}

type searchRequest struct {
	CustomerID string   `json:"customer_id"`
	Query      string   `json:"query"`
	Attributes []string `json:"attributes,omitempty"`
}

type debugResponse struct {
	Credentials google.TokenStatus `json:"credentials"`
	Config      any                `json:"config,omitempty"`
	AdsTools    adsToolsStatus     `json:"ads_tools_status"`
}

type adsToolsStatus struct {
	ServiceAvailable      bool   `json:"service_available"`
	CredentialsConfigured bool   `json:"credentials_configured"`
	AllToolsReady         bool   `json:"all_tools_ready"`
	NormalizeMode         string `json:"normalize_mode,omitempty"`
}

func (h *APIHandler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	resp := rootResponse{
		Message:      "Google Ads MCP API",
		Version:      h.version,
		Status:       "running",
		AdsAvailable: h.sc.AdsService() != nil,
		MCPTools:     h.toolNames,
		Endpoints: []string{
			"GET /health",
			"GET /customers",
			"POST /search",
			"GET /campaigns/{customer_id}",
			"GET /debug",
		},
	}
	if resp.MCPTools == nil {
		resp.MCPTools = []string{}
	}
	if cfg := h.sc.Config(); cfg != nil {
		resp.CredentialSource = string(cfg.CredentialSource())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   serviceName,
		GoogleAds: h.sc.AdsService() != nil,
	})
}

func (h *APIHandler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w)
	if svc == nil {
		return
	}
	result, err := svc.ListAccessibleCustomers(r.Context())
	if err != nil {
		h.writeError(w, r, "error fetching accessible customers", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	if req.CustomerID == "" || req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "customer_id and query are required"})
		return
	}

	svc := h.service(w)
	if svc == nil {
		return
	}
	resp, err := svc.Search(r.Context(), req.CustomerID, req.Query, req.Attributes)
	if err != nil {
		h.writeError(w, r, "error executing search", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w)
	if svc == nil {
		return
	}
	resp, err := svc.Campaigns(r.Context(), chi.URLParam(r, "customer_id"))
	if err != nil {
		h.writeError(w, r, "error executing search", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleDebug(w http.ResponseWriter, _ *http.Request) {
	svc := h.sc.AdsService()
	creds := h.sc.Credentials()

	resp := debugResponse{
		Credentials: google.CheckToken(creds),
		AdsTools: adsToolsStatus{
			ServiceAvailable:      svc != nil,
			CredentialsConfigured: creds != nil,
		},
	}
	resp.AdsTools.AllToolsReady = resp.AdsTools.ServiceAvailable && resp.Credentials.Valid
	if svc != nil {
		resp.AdsTools.NormalizeMode = svc.NormalizeMode().String()
	}
	if cfg := h.sc.Config(); cfg != nil {
		resp.Config = cfg.Summary()
	}
	writeJSON(w, http.StatusOK, resp)
}

// service returns the Ads service, or writes a 500 response and returns nil.
func (h *APIHandler) service(w http.ResponseWriter) *ads.Service {
	svc := h.sc.AdsService()
	if svc == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Google Ads service is not configured"})
	}
	return svc
}

// writeError maps err to a status code: 400 for invalid input, 502 for
// Google Ads API errors and 500 otherwise.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, ads.ErrInvalidCustomerID),
		errors.Is(err, ads.ErrEmptyQuery),
		errors.Is(err, gaql.ErrInvalidQuery):
		status = http.StatusBadRequest
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
	}

	h.logger.Error(message,
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		logging.Err(err),
	)
	writeJSON(w, status, errorResponse{Detail: message + ": " + err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
