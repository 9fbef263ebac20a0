package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values podium cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.CacheDir == "" {
		problems = append(problems, "paths.cache_dir must not be empty")
	}
	if c.Discogs.RequestsPerMinute <= 0 {
		problems = append(problems, "discogs.requests_per_minute must be positive")
	}
	if c.Discogs.BaseURL == "" {
		problems = append(problems, "discogs.base_url must not be empty")
	}
	if c.Tidal.Token == "" {
		problems = append(problems, "tidal.token must be set (or export PODIUM_TIDAL_TOKEN)")
	}
	if c.Tidal.RequestsPerMinute <= 0 {
		problems = append(problems, "tidal.requests_per_minute must be positive")
	}
	if c.Tidal.BaseURL == "" {
		problems = append(problems, "tidal.base_url must not be empty")
	}
	if len(c.Tidal.CountryCode) != 2 {
		problems = append(problems, "tidal.country_code must be a two-letter code")
	}
	if c.Matching.MinScore < 0 || c.Matching.MinScore > 1 {
		problems = append(problems, "matching.min_score must be between 0 and 1")
	}
	if c.Matching.SearchLimit <= 0 {
		problems = append(problems, "matching.search_limit must be positive")
	}
	if c.Cache.DiscogsExpiryDays <= 0 {
		problems = append(problems, "cache.discogs_expiry_days must be positive")
	}
	if c.Cache.TidalExpiryDays <= 0 {
		problems = append(problems, "cache.tidal_expiry_days must be positive")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
