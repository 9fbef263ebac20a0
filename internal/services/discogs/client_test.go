package discogs_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"podium/internal/matchcache"
	"podium/internal/music"
	"podium/internal/services"
	"podium/internal/services/discogs"
)

func testRecording(t *testing.T) music.Recording {
	t.Helper()
	rec, err := music.NewRecording("Bach", "Brandenburg Concertos", "Il Giardino Armonico", 1997, "Teldec")
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func searchPayload(results ...map[string]any) string {
	payload := map[string]any{"results": results}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := discogs.New(""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchRecordingFirstMatchWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/database/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "release" {
			t.Errorf("type param: got %q", got)
		}
		fmt.Fprint(w, searchPayload(
			map[string]any{
				"id":    1,
				"type":  "release",
				"title": "Karajan - Brandenburg Concertos",
				"year":  1965,
				"label": []string{"Deutsche Grammophon"},
			},
			map[string]any{
				"id":    2,
				"type":  "release",
				"title": "Il Giardino Armonico - Brandenburg Concertos",
				"year":  "1997",
				"label": []string{"Teldec"},
			},
			map[string]any{
				"id":    3,
				"type":  "release",
				"title": "Il Giardino Armonico - Brandenburg Concertos",
				"year":  1998,
				"label": []string{"Teldec"},
			},
		))
	}))
	defer server.Close()

	client, err := discogs.New("token", discogs.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := client.SearchRecording(context.Background(), testRecording(t))
	if err != nil {
		t.Fatalf("SearchRecording: %v", err)
	}
	if result.ResultsFound != 3 {
		t.Errorf("results found: got %d", result.ResultsFound)
	}
	if result.Release == nil || result.Release.ID != 2 {
		t.Fatalf("expected first qualifying release (id 2), got %+v", result.Release)
	}
}

func TestSearchRecordingNegativeResultCached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, searchPayload())
	}))
	defer server.Close()

	cache, err := matchcache.Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	client, err := discogs.New("token",
		discogs.WithBaseURL(server.URL),
		discogs.WithCache(cache))
	if err != nil {
		t.Fatal(err)
	}

	rec := testRecording(t)
	for i := 0; i < 2; i++ {
		result, err := client.SearchRecording(context.Background(), rec)
		if err != nil {
			t.Fatalf("SearchRecording: %v", err)
		}
		if result.FoundRelease() {
			t.Errorf("expected no release, got %+v", result.Release)
		}
	}
	if requests != 1 {
		t.Errorf("second search should hit the cache, server saw %d requests", requests)
	}
}

func TestSearchRecordingUnlabeledCandidateFailsLabelHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPayload(
			map[string]any{
				"id":    1,
				"type":  "release",
				"title": "Il Giardino Armonico - Brandenburg Concertos",
				"year":  1997,
			},
			map[string]any{
				"id":    2,
				"type":  "release",
				"title": "Il Giardino Armonico - Brandenburg Concertos",
				"year":  1997,
				"label": []string{"Teldec"},
			},
		))
	}))
	defer server.Close()

	client, err := discogs.New("token", discogs.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := client.SearchRecording(context.Background(), testRecording(t))
	if err != nil {
		t.Fatal(err)
	}
	if result.Release == nil || result.Release.ID != 2 {
		t.Fatalf("candidate without labels must not satisfy the label hint, got %+v", result.Release)
	}
}

func TestSearchRecordingPagination(t *testing.T) {
	pagesServed := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		page := r.URL.Query().Get("page")
		var results []map[string]any
		count := 100
		if page == "2" {
			count = 20
		}
		for i := 0; i < count; i++ {
			results = append(results, map[string]any{
				"id":    pagesServed*1000 + i + 1,
				"type":  "release",
				"title": "Somebody Irrelevant - Something Else",
				"year":  1900,
			})
		}
		fmt.Fprint(w, searchPayload(results...))
	}))
	defer server.Close()

	client, err := discogs.New("token", discogs.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := client.SearchRecording(context.Background(), testRecording(t))
	if err != nil {
		t.Fatal(err)
	}
	if pagesServed != 2 {
		t.Errorf("short second page should stop the scan, served %d pages", pagesServed)
	}
	if result.ResultsFound != 120 {
		t.Errorf("results found: got %d, want 120", result.ResultsFound)
	}
}

func TestSearchRecordingPageFailureTruncates(t *testing.T) {
	pagesServed := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		var results []map[string]any
		for i := 0; i < 100; i++ {
			results = append(results, map[string]any{
				"id":    i + 1,
				"type":  "release",
				"title": "Il Giardino Armonico - Brandenburg Concertos",
				"year":  1997,
				"label": []string{"Teldec"},
			})
		}
		fmt.Fprint(w, searchPayload(results...))
	}))
	defer server.Close()

	client, err := discogs.New("token", discogs.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := client.SearchRecording(context.Background(), testRecording(t))
	if err != nil {
		t.Fatalf("page failure should truncate, not fail: %v", err)
	}
	if result.ResultsFound != 100 {
		t.Errorf("results found: got %d, want 100", result.ResultsFound)
	}
	if !result.FoundRelease() {
		t.Error("first page candidates should still be considered")
	}
}

func TestSearchRecordingNoHintsAcceptsFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPayload(
			map[string]any{
				"id":    7,
				"type":  "release",
				"title": "Anonymous Ensemble - Brandenburg Concertos",
			},
		))
	}))
	defer server.Close()

	client, err := discogs.New("token", discogs.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	rec, err := music.NewRecording("Bach", "Brandenburg Concertos", "", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	result, err := client.SearchRecording(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if result.Release == nil || result.Release.ID != 7 {
		t.Errorf("hintless recording should accept the first candidate, got %+v", result.Release)
	}
}

func TestGetRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
            "id": 42,
            "title": "Brandenburg Concertos",
            "year": 1997,
            "artists": [{"name": "Il Giardino Armonico"}],
            "labels": [{"name": "Teldec"}],
            "formats": [{"name": "CD"}],
            "community": {"have": 120, "want": 45, "rating": {"average": 4.5}}
        }`)
	}))
	defer server.Close()

	client, err := discogs.New("token", discogs.WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	release, err := client.GetRelease(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetRelease: %v", err)
	}
	if release.Title != "Brandenburg Concertos" || release.Artists[0] != "Il Giardino Armonico" {
		t.Errorf("release not parsed: %+v", release)
	}
	if release.CommunityRating != 4.5 || release.Have != 120 {
		t.Errorf("community stats not parsed: %+v", release)
	}
}
