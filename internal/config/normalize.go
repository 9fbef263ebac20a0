package config

import (
	"fmt"
	"strings"
)

// normalize expands paths and trims user-supplied fields in place.
func (c *Config) normalize() error {
	for name, field := range map[string]*string{
		"paths.cache_dir": &c.Paths.CacheDir,
		"paths.log_dir":   &c.Paths.LogDir,
	} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = expanded
	}

	c.Discogs.Token = strings.TrimSpace(c.Discogs.Token)
	c.Discogs.BaseURL = strings.TrimRight(strings.TrimSpace(c.Discogs.BaseURL), "/")
	c.Discogs.UserAgent = strings.TrimSpace(c.Discogs.UserAgent)
	c.Tidal.Token = strings.TrimSpace(c.Tidal.Token)
	c.Tidal.UserID = strings.TrimSpace(c.Tidal.UserID)
	c.Tidal.BaseURL = strings.TrimRight(strings.TrimSpace(c.Tidal.BaseURL), "/")
	c.Tidal.CountryCode = strings.ToUpper(strings.TrimSpace(c.Tidal.CountryCode))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}
