package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/google"
	"github.com/teemow/adsmcp/internal/logging"
	"github.com/teemow/adsmcp/internal/normalize"
)

// DefaultConfigName is the base name of the settings file looked up when no
// explicit path is given.
const DefaultConfigName = "google-ads"

// envBindings maps setting keys to the environment variables overriding them.
var envBindings = map[string]string{
	"developer_token":    "GOOGLE_ADS_DEVELOPER_TOKEN",
	"login_customer_id":  "GOOGLE_ADS_LOGIN_CUSTOMER_ID",
	"json_key_file_path": "GOOGLE_ADS_JSON_KEY_FILE_PATH",
	"client_id":          "GOOGLE_ADS_CLIENT_ID",
	"client_secret":      "GOOGLE_ADS_CLIENT_SECRET",
	"refresh_token":      "GOOGLE_ADS_REFRESH_TOKEN",
	"credentials_base64": "GOOGLE_CREDENTIALS_BASE64",
	"project_id":         "GOOGLE_PROJECT_ID",
	"api_version":        "GOOGLE_ADS_API_VERSION",
	"endpoint":           "GOOGLE_ADS_ENDPOINT",
	"normalize_mode":     "ADS_NORMALIZE_MODE",
}

// Config holds the Google Ads settings.
type Config struct {
	DeveloperToken    string `mapstructure:"developer_token"`
	LoginCustomerID   string `mapstructure:"login_customer_id"`
	JSONKeyFilePath   string `mapstructure:"json_key_file_path"`
	ClientID          string `mapstructure:"client_id"`
	ClientSecret      string `mapstructure:"client_secret"`
	RefreshToken      string `mapstructure:"refresh_token"`
	CredentialsBase64 string `mapstructure:"credentials_base64"`
	ProjectID         string `mapstructure:"project_id"`
	APIVersion        string `mapstructure:"api_version"`
	Endpoint          string `mapstructure:"endpoint"`
	NormalizeMode     string `mapstructure:"normalize_mode"`

	// UseProtoPlus is accepted for compatibility with existing
	// google-ads.yaml files and ignored.
	UseProtoPlus bool `mapstructure:"use_proto_plus"`

	// ConfigFile is the settings file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// LoadDotEnv loads environment variables from files, ".env" by default.
// Missing files are skipped; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the settings. When path is empty, google-ads.yaml is looked up
// in the current directory and then in $HOME, and a missing file is not an
// error. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("api_version", ads.DefaultAPIVersion)
	v.SetDefault("endpoint", ads.DefaultEndpoint)
	v.SetDefault("normalize_mode", normalize.Deep.String())
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	return &cfg, nil
}

// Validate checks the settings needed to call the API.
func (c *Config) Validate() error {
	if c.DeveloperToken == "" {
		return ads.ErrMissingDeveloperToken
	}
	if c.LoginCustomerID != "" {
		if _, err := ads.NormalizeCustomerID(c.LoginCustomerID); err != nil {
			return fmt.Errorf("login_customer_id: %w", err)
		}
	}
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("normalize_mode: %w", err)
	}
	return nil
}

// Mode returns the configured normalization mode.
func (c *Config) Mode() (normalize.Mode, error) {
	return normalize.ParseMode(c.NormalizeMode)
}

// Credentials returns the credential inputs for google.FindCredentials.
func (c *Config) Credentials() google.CredentialsConfig {
	return google.CredentialsConfig{
		CredentialsBase64: c.CredentialsBase64,
		JSONKeyFilePath:   c.JSONKeyFilePath,
		ClientID:          c.ClientID,
		ClientSecret:      c.ClientSecret,
		RefreshToken:      c.RefreshToken,
		QuotaProject:      c.ProjectID,
	}
}

// CredentialSource predicts which credential source FindCredentials will use.
func (c *Config) CredentialSource() google.Source {
	creds := c.Credentials()
	switch {
	case creds.CredentialsBase64 != "":
		return google.SourceBase64
	case creds.JSONKeyFilePath != "":
		return google.SourceKeyFile
	case creds.HasRefreshToken():
		return google.SourceRefreshToken
	default:
		return google.SourceADC
	}
}

// Summary is a view of the settings that is safe to expose.
type Summary struct {
	ConfigFile       string `json:"config_file,omitempty"`
	DeveloperToken   string `json:"developer_token"`
	LoginCustomerID  string `json:"login_customer_id,omitempty"`
	CredentialSource string `json:"credential_source"`
	ProjectID        string `json:"project_id,omitempty"`
	APIVersion       string `json:"api_version"`
	Endpoint         string `json:"endpoint"`
	NormalizeMode    string `json:"normalize_mode"`
}

// Summary returns the settings with secrets masked.
func (c *Config) Summary() Summary {
	return Summary{
		ConfigFile:       c.ConfigFile,
		DeveloperToken:   logging.SanitizeToken(c.DeveloperToken),
		LoginCustomerID:  logging.MaskCustomerID(c.LoginCustomerID),
		CredentialSource: string(c.CredentialSource()),
		ProjectID:        c.ProjectID,
		APIVersion:       c.APIVersion,
		Endpoint:         c.Endpoint,
		NormalizeMode:    c.NormalizeMode,
	}
}
