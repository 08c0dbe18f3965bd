package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/helmick/nutriseek/internal/provider"
	"github.com/helmick/nutriseek/internal/search"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Dataset   DatasetConfig     `yaml:"dataset"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Search    SearchConfig      `yaml:"search"`
	Providers ProvidersConfig   `yaml:"providers"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Dataset.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Providers.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DatasetConfig holds the path to the JSON seed file directory.
type DatasetConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the dataset configuration.
func (c *DatasetConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SearchConfig holds the search pipeline's tuning knobs. Zero values fall
// back to the pipeline defaults.
type SearchConfig struct {
	Limit              int     `yaml:"limit"`
	LocalLimit         int     `yaml:"local_limit"`
	SufficientFraction float64 `yaml:"sufficient_fraction"`
	FuzzyThreshold     float64 `yaml:"fuzzy_threshold"`
	DebounceMS         int     `yaml:"debounce_ms"`
	CacheTTLMinutes    int     `yaml:"cache_ttl_minutes"`
	QualityHigh        int     `yaml:"quality_high"`
	QualityMedium      int     `yaml:"quality_medium"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Min(0)),
		validation.Field(&c.LocalLimit, validation.Min(0)),
		validation.Field(&c.SufficientFraction, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.FuzzyThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.DebounceMS, validation.Min(0)),
		validation.Field(&c.CacheTTLMinutes, validation.Min(0), validation.Max(60)),
		validation.Field(&c.QualityHigh, validation.Min(0)),
		validation.Field(&c.QualityMedium, validation.Min(0)),
	)
}

// ServiceConfig converts the section into the search orchestrator's config.
func (c *SearchConfig) ServiceConfig(providerTimeout time.Duration) search.Config {
	return search.Config{
		Limit:              c.Limit,
		LocalLimit:         c.LocalLimit,
		SufficientFraction: c.SufficientFraction,
		FuzzyThreshold:     c.FuzzyThreshold,
		DebounceInterval:   time.Duration(c.DebounceMS) * time.Millisecond,
		ProviderTimeout:    providerTimeout,
		CacheTTL:           time.Duration(c.CacheTTLMinutes) * time.Minute,
		QualityHigh:        c.QualityHigh,
		QualityMedium:      c.QualityMedium,
	}
}

// ProvidersConfig holds the external food database settings.
type ProvidersConfig struct {
	TimeoutSeconds int                 `yaml:"timeout_seconds"`
	OpenFoodFacts  OpenFoodFactsConfig `yaml:"openfoodfacts"`
	FDC            FDCConfig           `yaml:"fdc"`
}

// Validate validates the provider configuration.
func (c *ProvidersConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
	); err != nil {
		return err
	}
	return c.FDC.Validate()
}

// Timeout returns the per-provider fetch timeout.
func (c *ProvidersConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return provider.DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OpenFoodFactsConfig configures the Open Food Facts adapter.
type OpenFoodFactsConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// FDCConfig configures the USDA FoodData Central adapter.
type FDCConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Validate validates the FDC configuration.
func (c *FDCConfig) Validate() error {
	if c.Enabled && c.APIKey == "" {
		return fmt.Errorf("providers: fdc is enabled but api_key is empty")
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Dataset: DatasetConfig{
			Dir: "./dataset",
		},
		SQLite: SQLiteConfig{
			Path: "./nutriseek.db",
		},
		Search: SearchConfig{
			Limit:              20,
			LocalLimit:         10,
			SufficientFraction: 0.8,
			FuzzyThreshold:     0.45,
			DebounceMS:         300,
			CacheTTLMinutes:    5,
			QualityHigh:        8,
			QualityMedium:      4,
		},
		Providers: ProvidersConfig{
			TimeoutSeconds: 3,
			OpenFoodFacts: OpenFoodFactsConfig{
				Enabled: true,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
