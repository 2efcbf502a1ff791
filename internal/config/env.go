package config

import (
	"os"
	"strconv"
	"strings"
)

func applyEnvOverrides(c *Config) {
	setInt(&c.Server.Port, "PRECON_SERVER_PORT")
	setStringSlice(&c.Server.AllowedOrigins, "PRECON_SERVER_ALLOWED_ORIGINS")
	setStr(&c.Server.RequestTimeout, "PRECON_SERVER_REQUEST_TIMEOUT")

	setStr(&c.Scryfall.BaseURL, "PRECON_SCRYFALL_BASE_URL")
	setStr(&c.Scryfall.UserAgent, "PRECON_SCRYFALL_USER_AGENT")
	setStr(&c.Scryfall.Timeout, "PRECON_SCRYFALL_TIMEOUT")
	setStr(&c.Scryfall.ValuationSpacing, "PRECON_SCRYFALL_VALUATION_SPACING")
	setStr(&c.Scryfall.DetailSpacing, "PRECON_SCRYFALL_DETAIL_SPACING")

	setStr(&c.Catalog.Path, "PRECON_CATALOG_PATH")
	setBool(&c.Catalog.Watch, "PRECON_CATALOG_WATCH")

	setStr(&c.Storage.Path, "PRECON_STORAGE_PATH")
	setBool(&c.Storage.AutoMigrate, "PRECON_STORAGE_AUTO_MIGRATE")

	setStr(&c.Log.Level, "PRECON_LOG_LEVEL")
	setStr(&c.Log.Format, "PRECON_LOG_FORMAT")
}

// Each setter only touches dst when the variable is set and parses.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
