// Package discogs looks up recommended recordings in the Discogs release
// database to confirm the exact release a recommendation refers to.
package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"podium/internal/logging"
	"podium/internal/matchcache"
	"podium/internal/music"
	"podium/internal/ratelimit"
	"podium/internal/services"
)

const (
	defaultBaseURL = "https://api.discogs.com"
	defaultTimeout = 30 * time.Second

	// The API serves at most 100 results per page; scanning stops after
	// two pages to bound request volume on broad queries.
	resultsPerPage  = 100
	maxTotalResults = 200
)

// Resolver finds the marketplace release a recording refers to.
type Resolver interface {
	SearchRecording(ctx context.Context, rec music.Recording) (music.SearchResult, error)
}

// Client implements Resolver against the Discogs HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	cache      *matchcache.Store
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

var _ Resolver = (*Client)(nil)

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

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithCache attaches a result cache consulted before any network call.
func WithCache(cache *matchcache.Store) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLimiter attaches a rate limiter applied around each page fetch.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a Client. The token is required.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "discogs", "new", "API token is required", nil)
	}
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
		userAgent:  "podium/1.0",
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "discogs")
	return client, nil
}

// SearchRecording searches the release database for the recording and
// returns the first release whose metadata is consistent with the
// recommendation's performer, label, and year hints. Results are cached,
// including the negative case where no candidate passes the filter. A page
// fetch failure truncates the scan rather than failing the lookup.
func (c *Client) SearchRecording(ctx context.Context, rec music.Recording) (music.SearchResult, error) {
	if c.cache != nil {
		cached, found, err := c.cache.GetLookup(ctx, rec)
		if err != nil {
			c.logger.Warn("lookup cache read failed", logging.Error(err))
		} else if found {
			return cached, nil
		}
	}

	query := rec.SearchQuery()
	c.logger.Info("searching release database",
		logging.String(logging.FieldQuery, query))

	var candidates []searchResultDTO
	page := 1
	for len(candidates) < maxTotalResults {
		pageResults, err := c.fetchSearchPage(ctx, query, page)
		if err != nil {
			if ctx.Err() != nil {
				return music.SearchResult{}, err
			}
			c.logger.Error("page fetch failed, truncating scan",
				logging.String(logging.FieldQuery, query),
				logging.Int("page", page),
				logging.Error(err))
			break
		}
		if len(pageResults) == 0 {
			break
		}
		candidates = append(candidates, pageResults...)
		if len(pageResults) < resultsPerPage {
			break
		}
		page++
	}

	result := music.SearchResult{
		Recording:    rec,
		Query:        query,
		ResultsFound: len(candidates),
	}
	if release := c.firstMatch(rec, candidates); release != nil {
		result.Release = release
		c.logger.Info("release confirmed",
			logging.String("title", release.Title),
			logging.Int64("release_id", release.ID))
	} else if len(candidates) > 0 {
		c.logger.Warn("no release passed the metadata filter",
			logging.String(logging.FieldQuery, query),
			logging.Int("candidates", len(candidates)))
	}

	if c.cache != nil {
		if err := c.cache.PutLookup(ctx, rec, result); err != nil {
			c.logger.Warn("lookup cache write failed", logging.Error(err))
		}
	}
	return result, nil
}

// GetRelease fetches full release details by ID.
func (c *Client) GetRelease(ctx context.Context, id int64) (music.Release, error) {
	var dto releaseDTO
	path := fmt.Sprintf("/releases/%d", id)
	err := c.doLimited(func() error {
		return c.getJSON(ctx, path, url.Values{}, &dto)
	})
	if err != nil {
		return music.Release{}, err
	}
	release, err := dto.toRelease()
	if err != nil {
		return music.Release{}, services.Wrap(services.ErrLookup, "discogs", "get release",
			fmt.Sprintf("release %d is malformed", id), err)
	}
	return release, nil
}

func (c *Client) fetchSearchPage(ctx context.Context, query string, page int) ([]searchResultDTO, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "release")
	params.Set("per_page", strconv.Itoa(resultsPerPage))
	params.Set("page", strconv.Itoa(page))

	var payload searchResponseDTO
	err := c.doLimited(func() error {
		return c.getJSON(ctx, "/database/search", params, &payload)
	})
	if err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("token", c.token)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrLookup, "discogs", "request", "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrLookup, "discogs", "request",
			fmt.Sprintf("request failed after %s", time.Since(started).Round(time.Millisecond)), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrLookup, "discogs", "request",
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrLookup, "discogs", "request", "decode response", err)
	}
	return nil
}

// firstMatch returns the first candidate whose metadata agrees with the
// recording hints. Candidates that fail to parse are skipped.
func (c *Client) firstMatch(rec music.Recording, candidates []searchResultDTO) *music.Release {
	for _, dto := range candidates {
		release, err := dto.toRelease()
		if err != nil {
			c.logger.Debug("skipping malformed search result", logging.Error(err))
			continue
		}
		if release.MatchesRecordingMetadata(rec.Performer, rec.Label, rec.Year) {
			return &release
		}
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
