package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"podium/internal/config"
	"podium/internal/logging"
	"podium/internal/matchcache"
	"podium/internal/matching"
	"podium/internal/ratelimit"
	"podium/internal/services/discogs"
	"podium/internal/services/tidal"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			OutputPaths: []string{
				"stderr",
				filepath.Join(cfg.Paths.LogDir, "podium.log"),
			},
		})
		if err != nil {
			c.loggerErr = fmt.Errorf("initialize logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runtime bundles the services a matching command needs. Close releases
// the cache store and the cache lock.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	cache    *matchcache.Store
	resolver matching.ReleaseResolver
	catalog  *tidal.Client
	orch     *matching.Orchestrator

	lock *flock.Flock
}

// newRuntime builds the full service stack. The cache database is guarded
// by a file lock so concurrent runs do not interleave writes.
func (c *commandContext) newRuntime() (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	lock := flock.New(cfg.CachePath() + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another podium run is already using the cache")
	}

	cache, err := matchcache.Open(cfg.CachePath(), logger,
		matchcache.WithLookupTTL(daysToTTL(cfg.Cache.DiscogsExpiryDays)),
		matchcache.WithSearchTTL(daysToTTL(cfg.Cache.TidalExpiryDays)))
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, cache: cache, lock: lock}

	// Marketplace lookups are optional; without a token the pipeline
	// ranks on catalog signals alone.
	if cfg.Discogs.Token != "" {
		discogsLimiter, err := ratelimit.New(cfg.Discogs.RequestsPerMinute)
		if err != nil {
			rt.Close()
			return nil, err
		}
		resolver, err := discogs.New(cfg.Discogs.Token,
			discogs.WithBaseURL(cfg.Discogs.BaseURL),
			discogs.WithUserAgent(cfg.Discogs.UserAgent),
			discogs.WithCache(cache),
			discogs.WithLimiter(discogsLimiter),
			discogs.WithLogger(logger))
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.resolver = resolver
	} else {
		logger.Warn("no marketplace token configured, skipping release cross-checks")
	}

	tidalLimiter, err := ratelimit.New(cfg.Tidal.RequestsPerMinute)
	if err != nil {
		rt.Close()
		return nil, err
	}
	catalog, err := tidal.New(cfg.Tidal.Token,
		tidal.WithBaseURL(cfg.Tidal.BaseURL),
		tidal.WithUserID(cfg.Tidal.UserID),
		tidal.WithCountryCode(cfg.Tidal.CountryCode),
		tidal.WithCache(cache),
		tidal.WithLimiter(tidalLimiter),
		tidal.WithSearchLimit(cfg.Matching.SearchLimit),
		tidal.WithLogger(logger))
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.catalog = catalog

	orch, err := matching.New(rt.resolver, catalog, cfg.Matching.MinScore, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.orch = orch
	return rt, nil
}

// openCache opens just the cache store for maintenance commands.
func (c *commandContext) openCache() (*matchcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return matchcache.Open(cfg.CachePath(), logger,
		matchcache.WithLookupTTL(daysToTTL(cfg.Cache.DiscogsExpiryDays)),
		matchcache.WithSearchTTL(daysToTTL(cfg.Cache.TidalExpiryDays)))
}

// setMinScore rebuilds the orchestrator with an overridden score threshold.
func (r *runtime) setMinScore(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("min score must be between 0 and 1, got %.2f", score)
	}
	orch, err := matching.New(r.resolver, r.catalog, score, r.logger)
	if err != nil {
		return err
	}
	r.orch = orch
	return nil
}

func (r *runtime) Close() {
	if r.cache != nil {
		_ = r.cache.Close()
	}
	if r.lock != nil {
		_ = r.lock.Unlock()
	}
}

func daysToTTL(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
