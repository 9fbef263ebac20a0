package tidal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"podium/internal/matchcache"
	"podium/internal/music"
	"podium/internal/services"
	"podium/internal/services/tidal"
)

const searchBody = `{
    "albums": {
        "items": [
            {
                "id": 101,
                "title": "Bach: Brandenburg Concertos",
                "artists": [{"id": 1, "name": "Il Giardino Armonico"}],
                "releaseDate": "1997-03-14",
                "numberOfTracks": 18,
                "popularity": 62,
                "audioQuality": "LOSSLESS"
            },
            {
                "id": 102,
                "title": "Brandenburg Concertos",
                "artist": {"id": 2, "name": "Some Modern Group"},
                "releaseDate": "2015-01-01",
                "popularity": 88
            },
            {
                "id": 0,
                "title": "Malformed Row"
            }
        ]
    }
}`

func testRecording(t *testing.T) music.Recording {
	t.Helper()
	rec, err := music.NewRecording("Bach", "Brandenburg Concertos", "Il Giardino Armonico", 1997, "Teldec")
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := tidal.New(""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchAlbumsSkipsMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/albums" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Tidal-Token"); got != "token" {
			t.Errorf("token header: got %q", got)
		}
		fmt.Fprint(w, searchBody)
	}))
	defer server.Close()

	client, err := tidal.New("token", tidal.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	albums, err := client.SearchAlbums(context.Background(), "Bach Brandenburg Concertos", 50)
	if err != nil {
		t.Fatalf("SearchAlbums: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("malformed row should be skipped, got %d albums", len(albums))
	}
	if albums[0].ID != 101 || albums[1].ID != 102 {
		t.Errorf("unexpected album order: %+v", albums)
	}
	if albums[1].PrimaryArtist() != "Some Modern Group" {
		t.Errorf("singular artist field not parsed: %+v", albums[1])
	}
}

func TestSearchAlbumsCachesByRawQuery(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, searchBody)
	}))
	defer server.Close()

	cache, err := matchcache.Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	client, err := tidal.New("token",
		tidal.WithBaseURL(server.URL),
		tidal.WithCache(cache))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := client.SearchAlbums(ctx, "Bach Brandenburg Concertos", 50); err != nil {
		t.Fatal(err)
	}
	// A smaller limit must reuse the cached entry, trimmed afterwards.
	albums, err := client.SearchAlbums(ctx, "Bach Brandenburg Concertos", 1)
	if err != nil {
		t.Fatal(err)
	}
	if requests != 1 {
		t.Errorf("second search should hit the cache, server saw %d requests", requests)
	}
	if len(albums) != 1 {
		t.Errorf("limit should trim cached results, got %d", len(albums))
	}
}

func TestFindBestAlbumPrefersExactMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody)
	}))
	defer server.Close()

	client, err := tidal.New("token", tidal.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	release, err := music.NewRelease(42, "Brandenburg Concertos", []string{"Il Giardino Armonico"})
	if err != nil {
		t.Fatal(err)
	}
	release.Year = 1997

	best, ok, err := client.FindBestAlbum(context.Background(), testRecording(t), &release, 0.30)
	if err != nil || !ok {
		t.Fatalf("expected match: ok=%v err=%v", ok, err)
	}
	if best.Album.ID != 101 {
		t.Errorf("expected exact-match album 101, got %d", best.Album.ID)
	}
	if best.Score != 1.0 {
		t.Errorf("exact match should score 1.0, got %v", best.Score)
	}
}

func TestFindBestAlbumNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"albums": {"items": []}}`)
	}))
	defer server.Close()

	client, err := tidal.New("token", tidal.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := client.FindBestAlbum(context.Background(), testRecording(t), nil, 0.30)
	if err != nil {
		t.Fatalf("empty catalog should not error: %v", err)
	}
	if ok {
		t.Error("no results should mean no match")
	}
}

func TestCreatePlaylistRequiresUserID(t *testing.T) {
	client, err := tidal.New("token")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.CreatePlaylist(context.Background(), "Classical", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAddAlbumToPlaylist(t *testing.T) {
	var itemsPosted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/albums/101/tracks":
			fmt.Fprint(w, `{"items": [{"id": 9001, "title": "Concerto No. 1"}, {"id": 9002, "title": "Concerto No. 2"}]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/playlists/abc-123/items":
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			if got := r.PostForm.Get("trackIds"); got != "9001,9002" {
				t.Errorf("trackIds: got %q", got)
			}
			itemsPosted = true
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := tidal.New("token",
		tidal.WithBaseURL(server.URL),
		tidal.WithUserID("555"))
	if err != nil {
		t.Fatal(err)
	}

	added, err := client.AddAlbumToPlaylist(context.Background(), "abc-123", 101)
	if err != nil {
		t.Fatalf("AddAlbumToPlaylist: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 tracks added, got %d", added)
	}
	if !itemsPosted {
		t.Error("playlist items endpoint was never called")
	}
}

func TestAddAlbumToPlaylistEmptyAlbum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer server.Close()

	client, err := tidal.New("token", tidal.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.AddAlbumToPlaylist(context.Background(), "abc-123", 101); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error for trackless album, got %v", err)
	}
}

func TestCreatePlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/555/playlists" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("title"); got != "Classical Canon" {
			t.Errorf("title: got %q", got)
		}
		fmt.Fprint(w, `{"uuid": "abc-123", "title": "Classical Canon"}`)
	}))
	defer server.Close()

	client, err := tidal.New("token",
		tidal.WithBaseURL(server.URL),
		tidal.WithUserID("555"))
	if err != nil {
		t.Fatal(err)
	}

	id, err := client.CreatePlaylist(context.Background(), "Classical Canon", "from recommendations")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if id != "abc-123" {
		t.Errorf("playlist id: got %q", id)
	}
}
