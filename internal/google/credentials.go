package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

// Source names the way credentials were obtained.
type Source string

const (
	SourceNone         Source = "none"
	SourceBase64       Source = "base64"
	SourceKeyFile      Source = "json_key_file"
	SourceRefreshToken Source = "refresh_token"
	SourceADC          Source = "application_default"
)

// ErrNoCredentials is returned when no credential source is configured and
// Application Default Credentials cannot be found.
var ErrNoCredentials = errors.New("no Google credentials found")

// CredentialsConfig lists every supported credential input. Empty fields are
// skipped.
type CredentialsConfig struct {
	// CredentialsBase64 is a base64 encoded service account or authorized user JSON key.
	CredentialsBase64 string

	// JSONKeyFilePath points to a service account or authorized user JSON key.
	JSONKeyFilePath string

	// OAuth client and refresh token, used together.
	ClientID     string
	ClientSecret string
	RefreshToken string

	// QuotaProject is billed for API usage when set.
	QuotaProject string

	// Scopes default to DefaultScopes.
	Scopes []string
}

// HasRefreshToken reports whether the OAuth client triple is complete.
func (c CredentialsConfig) HasRefreshToken() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

func (c CredentialsConfig) scopes() []string {
	if len(c.Scopes) == 0 {
		return DefaultScopes
	}
	return c.Scopes
}

// Credentials are resolved Google credentials.
type Credentials struct {
	TokenSource oauth2.TokenSource
	Source      Source
	ProjectID   string
}

// FindCredentials resolves credentials from cfg in order: CredentialsBase64,
// JSONKeyFilePath, the refresh token triple, then Application Default
// Credentials.
func FindCredentials(ctx context.Context, cfg CredentialsConfig) (*Credentials, error) {
	scopes := cfg.scopes()

	if cfg.CredentialsBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.CredentialsBase64))
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 credentials: %w", err)
		}
		return fromJSON(ctx, data, SourceBase64, scopes)
	}

	if cfg.JSONKeyFilePath != "" {
		data, err := os.ReadFile(cfg.JSONKeyFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON key file: %w", err)
		}
		return fromJSON(ctx, data, SourceKeyFile, scopes)
	}

	if cfg.HasRefreshToken() {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		}
		return &Credentials{
			TokenSource: conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}),
			Source:      SourceRefreshToken,
		}, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	return &Credentials{
		TokenSource: creds.TokenSource,
		Source:      SourceADC,
		ProjectID:   creds.ProjectID,
	}, nil
}

// fromJSON accepts only service account and authorized user keys.
func fromJSON(ctx context.Context, data []byte, source Source, scopes []string) (*Credentials, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	credType := google.CredentialsType(head.Type)
	if credType != google.ServiceAccount && credType != google.AuthorizedUser {
		return nil, fmt.Errorf("unsupported credentials type %q", head.Type)
	}

	creds, err := google.CredentialsFromJSONWithType(ctx, data, credType, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s credentials: %w", head.Type, err)
	}
	return &Credentials{
		TokenSource: creds.TokenSource,
		Source:      source,
		ProjectID:   creds.ProjectID,
	}, nil
}

// NewHTTPClient resolves credentials from cfg and returns an HTTP client that
// authorizes every request with them.
func NewHTTPClient(ctx context.Context, cfg CredentialsConfig, userAgent string) (*http.Client, *Credentials, error) {
	creds, err := FindCredentials(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []option.ClientOption{option.WithTokenSource(creds.TokenSource)}
	if cfg.QuotaProject != "" {
		opts = append(opts, option.WithQuotaProject(cfg.QuotaProject))
	}
	if userAgent != "" {
		opts = append(opts, option.WithUserAgent(userAgent))
	}

	client, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create authenticated HTTP client: %w", err)
	}
	return client, creds, nil
}
