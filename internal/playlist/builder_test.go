package playlist_test

import (
	"context"
	"errors"
	"testing"

	"podium/internal/music"
	"podium/internal/playlist"
)

type stubCatalog struct {
	createErr error
	failAlbum int64
	added     []int64
}

func (s *stubCatalog) CreatePlaylist(_ context.Context, title, description string) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return "pl-1", nil
}

func (s *stubCatalog) AddAlbumToPlaylist(_ context.Context, _ string, albumID int64) (int, error) {
	if albumID == s.failAlbum {
		return 0, errors.New("album unavailable")
	}
	s.added = append(s.added, albumID)
	return 10, nil
}

func outcomes(t *testing.T) []music.MatchOutcome {
	t.Helper()
	first, err := music.NewAlbum(1, "Brandenburg Concertos", []string{"Il Giardino Armonico"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := music.NewAlbum(2, "Winterreise", []string{"Fischer-Dieskau"})
	if err != nil {
		t.Fatal(err)
	}
	return []music.MatchOutcome{
		{Album: &first, Score: 1.0},
		{},
		{Album: &second, Score: 0.6},
	}
}

func TestBuildAddsMatchedAlbumsInOrder(t *testing.T) {
	catalog := &stubCatalog{}
	builder, err := playlist.NewBuilder(catalog, nil)
	if err != nil {
		t.Fatal(err)
	}

	result, err := builder.Build(context.Background(), "Classical Canon", outcomes(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PlaylistID != "pl-1" {
		t.Errorf("playlist id: %q", result.PlaylistID)
	}
	if result.AlbumsAdded != 2 || result.TracksAdded != 20 || result.Skipped != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(catalog.added) != 2 || catalog.added[0] != 1 || catalog.added[1] != 2 {
		t.Errorf("albums out of order: %v", catalog.added)
	}
}

func TestBuildSkipsFailedAlbums(t *testing.T) {
	catalog := &stubCatalog{failAlbum: 1}
	builder, err := playlist.NewBuilder(catalog, nil)
	if err != nil {
		t.Fatal(err)
	}

	result, err := builder.Build(context.Background(), "Classical Canon", outcomes(t))
	if err != nil {
		t.Fatalf("per-album failure must not abort: %v", err)
	}
	if result.AlbumsAdded != 1 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestBuildCreateFailureAborts(t *testing.T) {
	catalog := &stubCatalog{createErr: errors.New("unauthorized")}
	builder, err := playlist.NewBuilder(catalog, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := builder.Build(context.Background(), "Classical Canon", outcomes(t)); err == nil {
		t.Fatal("expected error when playlist creation fails")
	}
}

func TestNewBuilderRequiresCatalog(t *testing.T) {
	if _, err := playlist.NewBuilder(nil, nil); err == nil {
		t.Fatal("expected error for missing catalog service")
	}
}
