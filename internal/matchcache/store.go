// Package matchcache persists marketplace lookups and catalog searches in
// SQLite so repeated runs avoid refetching from the upstream APIs.
package matchcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"podium/internal/logging"
	"podium/internal/music"
)

// Default freshness windows. Marketplace data moves slowly; catalog
// availability changes more often.
const (
	DefaultLookupTTL = 30 * 24 * time.Hour
	DefaultSearchTTL = 7 * 24 * time.Hour
)

// Category selects which table a maintenance operation targets.
type Category string

const (
	CategoryAll     Category = "all"
	CategoryLookups Category = "lookups"
	CategorySearch  Category = "searches"
)

// Stats summarizes cache contents.
type Stats struct {
	Path          string
	SizeBytes     int64
	LookupEntries int
	SearchEntries int
}

// TotalEntries returns the combined row count across both tables.
func (s Stats) TotalEntries() int {
	return s.LookupEntries + s.SearchEntries
}

// Store manages the on-disk result cache.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	lookupTTL time.Duration
	searchTTL time.Duration
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLookupTTL overrides the marketplace lookup freshness window.
func WithLookupTTL(ttl time.Duration) Option {
	return func(s *Store) { s.lookupTTL = ttl }
}

// WithSearchTTL overrides the catalog search freshness window.
func WithSearchTTL(ttl time.Duration) Option {
	return func(s *Store) { s.searchTTL = ttl }
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open initializes or connects to the cache database at path.
func Open(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "matchcache")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:        db,
		path:      path,
		logger:    logger,
		lookupTTL: DefaultLookupTTL,
		searchTTL: DefaultSearchTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS discogs_lookups (
            query_hash TEXT PRIMARY KEY,
            composer TEXT,
            work TEXT,
            performer TEXT,
            label TEXT,
            year INTEGER,
            payload TEXT NOT NULL,
            created_at INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS tidal_searches (
            query_hash TEXT PRIMARY KEY,
            query TEXT,
            payload TEXT NOT NULL,
            created_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_discogs_lookups_created_at ON discogs_lookups(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tidal_searches_created_at ON tidal_searches(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// GetLookup returns the cached marketplace lookup for the recording, if a
// fresh entry exists. Expired or unreadable rows count as misses.
func (s *Store) GetLookup(ctx context.Context, rec music.Recording) (music.SearchResult, bool, error) {
	hash := recordingHash(rec)

	var payload string
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM discogs_lookups WHERE query_hash = ?`, hash).
		Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return music.SearchResult{}, false, nil
	}
	if err != nil {
		return music.SearchResult{}, false, fmt.Errorf("query lookup cache: %w", err)
	}

	if s.expired(createdAt, s.lookupTTL) {
		s.logger.Debug("lookup cache entry expired",
			logging.String("composer", rec.Composer),
			logging.String("work", rec.Work))
		return music.SearchResult{}, false, nil
	}

	var stored lookupPayload
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		s.logger.Warn("discarding unreadable lookup cache entry",
			logging.String("composer", rec.Composer),
			logging.String("work", rec.Work),
			logging.Error(err))
		return music.SearchResult{}, false, nil
	}

	result := stored.toSearchResult(rec)
	s.logger.Debug("lookup cache hit",
		logging.String("composer", rec.Composer),
		logging.String("work", rec.Work))
	return result, true, nil
}

// PutLookup stores a marketplace lookup result, replacing any prior entry
// for the same recording. Negative results are cached too.
func (s *Store) PutLookup(ctx context.Context, rec music.Recording, result music.SearchResult) error {
	payload, err := json.Marshal(newLookupPayload(result))
	if err != nil {
		return fmt.Errorf("encode lookup payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO discogs_lookups
            (query_hash, composer, work, performer, label, year, payload, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recordingHash(rec),
		rec.Composer,
		rec.Work,
		nullableString(rec.Performer),
		nullableString(rec.Label),
		rec.Year,
		string(payload),
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store lookup result: %w", err)
	}
	return nil
}

// GetSearch returns the cached catalog albums for a raw query string.
func (s *Store) GetSearch(ctx context.Context, query string) ([]music.Album, bool, error) {
	hash := stringHash(query)

	var payload string
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM tidal_searches WHERE query_hash = ?`, hash).
		Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query search cache: %w", err)
	}

	if s.expired(createdAt, s.searchTTL) {
		s.logger.Debug("search cache entry expired", logging.String(logging.FieldQuery, query))
		return nil, false, nil
	}

	var stored []albumPayload
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		s.logger.Warn("discarding unreadable search cache entry",
			logging.String(logging.FieldQuery, query),
			logging.Error(err))
		return nil, false, nil
	}

	albums := make([]music.Album, 0, len(stored))
	for _, p := range stored {
		albums = append(albums, p.toAlbum())
	}
	s.logger.Debug("search cache hit",
		logging.String(logging.FieldQuery, query),
		logging.Int("album_count", len(albums)))
	return albums, true, nil
}

// PutSearch stores catalog search results keyed by the raw query string.
// An empty result list is a valid cacheable outcome.
func (s *Store) PutSearch(ctx context.Context, query string, albums []music.Album) error {
	stored := make([]albumPayload, 0, len(albums))
	for _, album := range albums {
		stored = append(stored, newAlbumPayload(album))
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode search payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tidal_searches (query_hash, query, payload, created_at)
         VALUES (?, ?, ?, ?)`,
		stringHash(query),
		query,
		string(payload),
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store search results: %w", err)
	}
	return nil
}

// Expire deletes rows older than their freshness window and returns the
// number removed per table.
func (s *Store) Expire(ctx context.Context) (lookups, searches int64, err error) {
	now := s.now().Unix()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM discogs_lookups WHERE created_at < ?`,
		now-int64(s.lookupTTL.Seconds()))
	if err != nil {
		return 0, 0, fmt.Errorf("expire lookup entries: %w", err)
	}
	lookups, _ = res.RowsAffected()

	res, err = s.db.ExecContext(ctx,
		`DELETE FROM tidal_searches WHERE created_at < ?`,
		now-int64(s.searchTTL.Seconds()))
	if err != nil {
		return 0, 0, fmt.Errorf("expire search entries: %w", err)
	}
	searches, _ = res.RowsAffected()

	if lookups > 0 || searches > 0 {
		s.logger.Info("expired stale cache entries",
			logging.Int64("lookup_entries", lookups),
			logging.Int64("search_entries", searches))
	}
	return lookups, searches, nil
}

// Clear removes entries from the selected category.
func (s *Store) Clear(ctx context.Context, category Category) error {
	var statements []string
	switch category {
	case CategoryLookups:
		statements = []string{`DELETE FROM discogs_lookups`}
	case CategorySearch:
		statements = []string{`DELETE FROM tidal_searches`}
	case CategoryAll, "":
		statements = []string{`DELETE FROM discogs_lookups`, `DELETE FROM tidal_searches`}
	default:
		return fmt.Errorf("unknown cache category %q", category)
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	s.logger.Info("cleared cache", logging.String("category", string(category)))
	return nil
}

// Stats reports row counts and the database file size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM discogs_lookups`).
		Scan(&stats.LookupEntries); err != nil {
		return Stats{}, fmt.Errorf("count lookup entries: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tidal_searches`).
		Scan(&stats.SearchEntries); err != nil {
		return Stats{}, fmt.Errorf("count search entries: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

func (s *Store) expired(createdAt int64, ttl time.Duration) bool {
	age := s.now().Sub(time.Unix(createdAt, 0))
	return age > ttl
}

func recordingHash(rec music.Recording) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%d", rec.Composer, rec.Work, rec.Performer, rec.Label, rec.Year)
	return stringHash(key)
}

func stringHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
