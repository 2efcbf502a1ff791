package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Scryfall client and pacing configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Deck catalog configuration
	Catalog CatalogConfig `toml:"catalog"`

	// SQLite storage configuration
	Storage StorageConfig `toml:"storage"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`            // Listen port
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins
	RequestTimeout string   `toml:"request_timeout"` // Per-request timeout (e.g., "60s")
}

// ScryfallConfig contains price lookup settings.
type ScryfallConfig struct {
	BaseURL          string `toml:"base_url"`
	UserAgent        string `toml:"user_agent"`
	Timeout          string `toml:"timeout"`           // HTTP timeout per lookup
	ValuationSpacing string `toml:"valuation_spacing"` // Gap between lookups during analysis
	DetailSpacing    string `toml:"detail_spacing"`    // Gap between lookups for single-deck views
}

// CatalogConfig contains deck dataset settings.
type CatalogConfig struct {
	Path  string `toml:"path"`  // JSON dataset built by catalog-build
	Watch bool   `toml:"watch"` // Reload when the file changes
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path        string `toml:"path"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RequestTimeout: "60s",
		},
		Scryfall: ScryfallConfig{
			BaseURL:          "https://api.scryfall.com",
			UserAgent:        "PreconAnalyzer/1.0",
			Timeout:          "10s",
			ValuationSpacing: "100ms",
			DetailSpacing:    "50ms",
		},
		Catalog: CatalogConfig{
			Path:  "data/precons.json",
			Watch: true,
		},
		Storage: StorageConfig{
			Path:        "data/precon-analyzer.db",
			AutoMigrate: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path on top of the defaults and then applies
// PRECON_* environment overrides, including those from a .env file in the
// working directory. A missing file yields the defaults. The result is not
// validated.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	durations := []struct {
		name  string
		value string
	}{
		{"server request timeout", c.Server.RequestTimeout},
		{"scryfall timeout", c.Scryfall.Timeout},
		{"valuation spacing", c.Scryfall.ValuationSpacing},
		{"detail spacing", c.Scryfall.DetailSpacing},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive: %s", d.name, d.value)
		}
	}

	if c.Scryfall.BaseURL == "" {
		return fmt.Errorf("scryfall base url cannot be empty")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path cannot be empty")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path cannot be empty")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	return nil
}

// GetRequestTimeout returns the per-request server timeout.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// GetScryfallTimeout returns the HTTP timeout for price lookups.
func (c *Config) GetScryfallTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.Timeout)
}

// GetValuationSpacing returns the lookup spacing used by analysis jobs.
func (c *Config) GetValuationSpacing() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.ValuationSpacing)
}

// GetDetailSpacing returns the lookup spacing used by single-deck requests.
func (c *Config) GetDetailSpacing() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.DetailSpacing)
}
