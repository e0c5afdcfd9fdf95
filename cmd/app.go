package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/config"
	"github.com/teemow/adsmcp/internal/google"
	"github.com/teemow/adsmcp/internal/instrumentation"
	"github.com/teemow/adsmcp/internal/logging"
	"github.com/teemow/adsmcp/internal/normalize"
)

func userAgent() string {
	return "adsmcp/" + version
}

// loadConfig reads the settings and applies the normalize mode override.
func loadConfig(normalizeMode string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if normalizeMode != "" {
		cfg.NormalizeMode = normalizeMode
	}
	return cfg, nil
}

// instrumentationConfig reads the instrumentation settings from the
// environment and records the Ads API version and normalize mode of cfg.
func instrumentationConfig(cfg *config.Config) instrumentation.Config {
	ic := instrumentation.DefaultConfig()
	ic.ServiceVersion = version
	ic.AdsAPIVersion = cfg.APIVersion
	if mode, err := cfg.Mode(); err == nil {
		ic.NormalizeMode = mode.String()
	}
	return ic
}

// newAdsService resolves credentials and builds the Google Ads service.
// metrics may be nil.
func newAdsService(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*ads.Service, *google.Credentials, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, nil, err
	}

	httpClient, creds, err := google.NewHTTPClient(ctx, cfg.Credentials(), userAgent())
	if err != nil {
		return nil, nil, err
	}

	client, err := ads.NewClient(ads.ClientConfig{
		Endpoint:        cfg.Endpoint,
		APIVersion:      cfg.APIVersion,
		DeveloperToken:  cfg.DeveloperToken,
		LoginCustomerID: cfg.LoginCustomerID,
		HTTPClient:      httpClient,
		UserAgent:       userAgent(),
	})
	if err != nil {
		return nil, nil, err
	}

	attrs := []any{
		slog.String("endpoint", client.BaseURL()),
		slog.String("credential_source", string(creds.Source)),
		slog.String("normalize_mode", mode.String()),
	}
	if id := client.LoginCustomerID(); id != "" {
		attrs = append(attrs, slog.String("login_customer_id", logging.MaskCustomerID(id)))
	}
	logger.Debug("google ads client created", attrs...)

	service := ads.NewService(client,
		ads.WithNormalizer(normalize.New(normalize.WithMode(mode), normalize.WithLogger(logger))),
		ads.WithMetrics(metrics),
		ads.WithLogger(logger),
	)
	return service, creds, nil
}
