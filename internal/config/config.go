package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfigTOML string

// Config describes the complete podium configuration.
type Config struct {
	Paths    PathsConfig    `toml:"paths"`
	Discogs  DiscogsConfig  `toml:"discogs"`
	Tidal    TidalConfig    `toml:"tidal"`
	Matching MatchingConfig `toml:"matching"`
	Cache    CacheConfig    `toml:"cache"`
	Logging  LoggingConfig  `toml:"logging"`
}

// PathsConfig holds filesystem locations used by podium.
type PathsConfig struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// DiscogsConfig holds marketplace lookup settings. An empty token disables
// the cross-check stage rather than failing validation.
type DiscogsConfig struct {
	Token             string `toml:"token"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	UserAgent         string `toml:"user_agent"`
	BaseURL           string `toml:"base_url"`
}

// TidalConfig holds streaming catalog settings.
type TidalConfig struct {
	Token             string `toml:"token"`
	UserID            string `toml:"user_id"`
	CountryCode       string `toml:"country_code"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	BaseURL           string `toml:"base_url"`
}

// MatchingConfig tunes the match pipeline.
type MatchingConfig struct {
	MinScore    float64 `toml:"min_score"`
	SearchLimit int     `toml:"search_limit"`
}

// CacheConfig controls the on-disk result cache.
type CacheConfig struct {
	DiscogsExpiryDays int `toml:"discogs_expiry_days"`
	TidalExpiryDays   int `toml:"tidal_expiry_days"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfigPath returns the preferred config file location.
func DefaultConfigPath() string {
	return "~/.config/podium/config.toml"
}

// Load reads configuration from the provided path, falling back to the
// default location when path is empty. It returns the parsed configuration,
// the resolved path that was consulted, and whether a file existed there.
// When no file exists the returned config holds defaults with environment
// overrides applied.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultConfigPath()
	}
	expanded, err := expandPath(resolved)
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve config path: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(expanded)
	exists := err == nil
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, expanded, false, fmt.Errorf("read config file: %w", err)
		}
	} else {
		decoder := toml.NewDecoder(strings.NewReader(string(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return nil, expanded, true, fmt.Errorf("parse config file %s: %w", expanded, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, expanded, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, expanded, exists, err
	}
	return cfg, expanded, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if token := strings.TrimSpace(os.Getenv("PODIUM_DISCOGS_TOKEN")); token != "" {
		c.Discogs.Token = token
	}
	if token := strings.TrimSpace(os.Getenv("PODIUM_TIDAL_TOKEN")); token != "" {
		c.Tidal.Token = token
	}
}

// EnsureDirectories creates the directories named in the configuration.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CachePath returns the sqlite database location for the result cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, "podium.db")
}

// CreateSample writes the annotated sample configuration to path. It refuses
// to overwrite an existing file.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("inspect config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfigTOML), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("determine home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
