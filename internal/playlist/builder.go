// Package playlist assembles streaming playlists from match outcomes.
package playlist

import (
	"context"
	"fmt"
	"log/slog"

	"podium/internal/logging"
	"podium/internal/music"
	"podium/internal/services"
)

// CatalogService covers the playlist operations the builder needs.
type CatalogService interface {
	CreatePlaylist(ctx context.Context, title, description string) (string, error)
	AddAlbumToPlaylist(ctx context.Context, playlistID string, albumID int64) (int, error)
}

// Result reports what a build produced.
type Result struct {
	PlaylistID  string
	AlbumsAdded int
	TracksAdded int
	Skipped     int
}

// Builder creates a playlist from matched albums.
type Builder struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(catalog CatalogService, logger *slog.Logger) (*Builder, error) {
	if catalog == nil {
		return nil, services.Wrap(services.ErrConfiguration, "playlist", "new", "catalog service is required", nil)
	}
	return &Builder{
		catalog: catalog,
		logger:  logging.NewComponentLogger(logger, "playlist"),
	}, nil
}

// Build creates a playlist named title and adds every matched album in
// outcome order. Per-album failures are logged and skipped; only playlist
// creation failure aborts the build.
func (b *Builder) Build(ctx context.Context, title string, outcomes []music.MatchOutcome) (Result, error) {
	matched := 0
	for _, outcome := range outcomes {
		if outcome.Found() {
			matched++
		}
	}
	description := fmt.Sprintf("Matched %d of %d recommended recordings", matched, len(outcomes))

	playlistID, err := b.catalog.CreatePlaylist(ctx, title, description)
	if err != nil {
		return Result{}, services.Wrap(services.ErrLookup, "playlist", "build", "create playlist", err)
	}

	result := Result{PlaylistID: playlistID}
	for _, outcome := range outcomes {
		if !outcome.Found() {
			continue
		}
		tracks, err := b.catalog.AddAlbumToPlaylist(ctx, playlistID, outcome.Album.ID)
		if err != nil {
			b.logger.Warn("skipping album that could not be added",
				logging.String(logging.FieldEntry, outcome.Entry.String()),
				logging.Int64("album_id", outcome.Album.ID),
				logging.Error(err))
			result.Skipped++
			continue
		}
		result.AlbumsAdded++
		result.TracksAdded += tracks
	}

	b.logger.Info("playlist build complete",
		logging.String("playlist_id", playlistID),
		logging.Int("albums_added", result.AlbumsAdded),
		logging.Int("tracks_added", result.TracksAdded),
		logging.Int("skipped", result.Skipped))
	return result, nil
}
