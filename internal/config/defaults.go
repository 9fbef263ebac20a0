package config

// Default returns the baseline configuration before file and environment
// overrides are applied.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			CacheDir: "~/.local/share/podium",
			LogDir:   "~/.local/share/podium/logs",
		},
		Discogs: DiscogsConfig{
			RequestsPerMinute: 60,
			UserAgent:         "podium/1.0",
			BaseURL:           "https://api.discogs.com",
		},
		Tidal: TidalConfig{
			CountryCode:       "US",
			RequestsPerMinute: 30,
			BaseURL:           "https://api.tidal.com/v1",
		},
		Matching: MatchingConfig{
			MinScore:    0.30,
			SearchLimit: 10,
		},
		Cache: CacheConfig{
			DiscogsExpiryDays: 30,
			TidalExpiryDays:   7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
