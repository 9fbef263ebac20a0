// Package tidal searches the streaming catalog for ranked album matches
// and manages playlists.
package tidal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"podium/internal/logging"
	"podium/internal/matchcache"
	"podium/internal/music"
	"podium/internal/ranking"
	"podium/internal/ratelimit"
	"podium/internal/services"
)

const (
	defaultBaseURL = "https://api.tidal.com/v1"
	defaultTimeout = 30 * time.Second

	// Catalog searches always request this many candidates from the API;
	// callers trim to their own limit afterwards.
	searchLimit = 50
)

// Finder searches the streaming catalog for the best album match.
type Finder interface {
	FindBestAlbum(ctx context.Context, rec music.Recording, release *music.Release, minScore float64) (ranking.ScoredAlbum, bool, error)
}

// Client implements Finder against the Tidal HTTP API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	userID      string
	countryCode string
	cache       *matchcache.Store
	limiter     *ratelimit.Limiter
	ranker      *ranking.Ranker
	candidates  int
	logger      *slog.Logger
}

var _ Finder = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithUserID sets the account used for playlist operations.
func WithUserID(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

// WithCountryCode sets the catalog region. Defaults to US.
func WithCountryCode(code string) Option {
	return func(c *Client) {
		if code != "" {
			c.countryCode = code
		}
	}
}

// WithCache attaches a result cache consulted before any network call.
func WithCache(cache *matchcache.Store) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLimiter attaches a rate limiter applied around each request.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithRanker overrides the quality ranker.
func WithRanker(ranker *ranking.Ranker) Option {
	return func(c *Client) {
		if ranker != nil {
			c.ranker = ranker
		}
	}
}

// WithSearchLimit caps how many candidates FindBestAlbum considers per
// search. Values outside (0, 50] fall back to 50.
func WithSearchLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 && limit <= searchLimit {
			c.candidates = limit
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a Client. The session token is required.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tidal", "new", "session token is required", nil)
	}
	client := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     defaultBaseURL,
		token:       token,
		countryCode: "US",
		candidates:  searchLimit,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "tidal")
	if client.ranker == nil {
		client.ranker = ranking.New(nil)
	}
	return client, nil
}

// SearchAlbums searches the catalog and returns up to limit albums.
// Results are cached by the raw query string before the limit is applied,
// so different limits share one cache entry. Malformed rows are skipped.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]music.Album, error) {
	if limit <= 0 || limit > searchLimit {
		limit = searchLimit
	}

	if c.cache != nil {
		cached, found, err := c.cache.GetSearch(ctx, query)
		if err != nil {
			c.logger.Warn("search cache read failed", logging.Error(err))
		} else if found {
			return truncate(cached, limit), nil
		}
	}

	c.logger.Info("searching catalog", logging.String(logging.FieldQuery, query))

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(searchLimit))

	var payload searchResponseDTO
	err := c.doLimited(func() error {
		return c.getJSON(ctx, "/search/albums", params, &payload)
	})
	if err != nil {
		return nil, err
	}

	albums := make([]music.Album, 0, len(payload.Albums.Items))
	for _, dto := range payload.Albums.Items {
		album, err := dto.toAlbum()
		if err != nil {
			c.logger.Debug("skipping malformed album", logging.Error(err))
			continue
		}
		albums = append(albums, album)
	}
	c.logger.Info("catalog search complete",
		logging.String(logging.FieldQuery, query),
		logging.Int("album_count", len(albums)))

	if c.cache != nil {
		if err := c.cache.PutSearch(ctx, query, albums); err != nil {
			c.logger.Warn("search cache write failed", logging.Error(err))
		}
	}
	return truncate(albums, limit), nil
}

// FindBestAlbum searches the catalog for the recording and returns the
// highest-quality candidate that reaches minScore. The marketplace release,
// when present, enables exact-match detection.
func (c *Client) FindBestAlbum(ctx context.Context, rec music.Recording, release *music.Release, minScore float64) (ranking.ScoredAlbum, bool, error) {
	query := rec.SearchQuery()

	albums, err := c.SearchAlbums(ctx, query, c.candidates)
	if err != nil {
		return ranking.ScoredAlbum{}, false, err
	}
	if len(albums) == 0 {
		c.logger.Warn("no catalog results", logging.String(logging.FieldQuery, query))
		return ranking.ScoredAlbum{}, false, nil
	}

	best, ok := c.ranker.FindBest(albums, release, minScore)
	if !ok {
		c.logger.Warn("no candidate reached the score threshold",
			logging.String(logging.FieldQuery, query),
			logging.Float64("min_score", minScore))
		return ranking.ScoredAlbum{}, false, nil
	}

	c.logger.Info("best match selected",
		logging.String("title", best.Album.Title),
		logging.String("artist", best.Album.PrimaryArtist()),
		logging.Float64(logging.FieldScore, best.Score))
	return best, true, nil
}

// GetAlbum fetches album details by ID.
func (c *Client) GetAlbum(ctx context.Context, id int64) (music.Album, error) {
	var dto albumDTO
	err := c.doLimited(func() error {
		return c.getJSON(ctx, fmt.Sprintf("/albums/%d", id), url.Values{}, &dto)
	})
	if err != nil {
		return music.Album{}, err
	}
	album, err := dto.toAlbum()
	if err != nil {
		return music.Album{}, services.Wrap(services.ErrLookup, "tidal", "get album",
			fmt.Sprintf("album %d is malformed", id), err)
	}
	return album, nil
}

// CreatePlaylist creates a playlist for the configured user and returns
// its UUID.
func (c *Client) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	if c.userID == "" {
		return "", services.Wrap(services.ErrConfiguration, "tidal", "create playlist", "user id is not configured", nil)
	}

	form := url.Values{}
	form.Set("title", title)
	form.Set("description", description)

	var payload playlistDTO
	err := c.doLimited(func() error {
		return c.postForm(ctx, fmt.Sprintf("/users/%s/playlists", c.userID), form, &payload)
	})
	if err != nil {
		return "", err
	}
	if payload.UUID == "" {
		return "", services.Wrap(services.ErrLookup, "tidal", "create playlist", "response carried no playlist id", nil)
	}

	c.logger.Info("created playlist",
		logging.String("title", title),
		logging.String("playlist_id", payload.UUID))
	return payload.UUID, nil
}

// AddAlbumToPlaylist appends every track of the album to the playlist and
// returns the number of tracks added.
func (c *Client) AddAlbumToPlaylist(ctx context.Context, playlistID string, albumID int64) (int, error) {
	var tracks trackListDTO
	err := c.doLimited(func() error {
		return c.getJSON(ctx, fmt.Sprintf("/albums/%d/tracks", albumID), url.Values{}, &tracks)
	})
	if err != nil {
		return 0, err
	}
	if len(tracks.Items) == 0 {
		return 0, services.Wrap(services.ErrNotFound, "tidal", "add album",
			fmt.Sprintf("album %d has no tracks", albumID), nil)
	}

	ids := make([]string, 0, len(tracks.Items))
	for _, track := range tracks.Items {
		ids = append(ids, strconv.FormatInt(track.ID, 10))
	}

	form := url.Values{}
	form.Set("trackIds", strings.Join(ids, ","))
	form.Set("onDupes", "SKIP")

	err = c.doLimited(func() error {
		return c.postForm(ctx, fmt.Sprintf("/playlists/%s/items", playlistID), form, nil)
	})
	if err != nil {
		return 0, err
	}

	c.logger.Info("added album to playlist",
		logging.Int64("album_id", albumID),
		logging.String("playlist_id", playlistID),
		logging.Int("track_count", len(ids)))
	return len(ids), nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("countryCode", c.countryCode)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrLookup, "tidal", "request", "build request", err)
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	endpoint := c.baseURL + path + "?countryCode=" + url.QueryEscape(c.countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return services.Wrap(services.ErrLookup, "tidal", "request", "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Tidal-Token", c.token)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrLookup, "tidal", "request",
			fmt.Sprintf("request failed after %s", time.Since(started).Round(time.Millisecond)), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrLookup, "tidal", "request",
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrLookup, "tidal", "request", "decode response", err)
	}
	return nil
}

// doLimited runs fn inside the rate limiter when one is configured.
func (c *Client) doLimited(fn func() error) error {
	if c.limiter == nil {
		return fn()
	}
	return c.limiter.Do(fn)
}

func truncate(albums []music.Album, limit int) []music.Album {
	if len(albums) > limit {
		return albums[:limit]
	}
	return albums
}
