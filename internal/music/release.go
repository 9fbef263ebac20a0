package music

import (
	"fmt"
	"strings"

	"podium/internal/services"
)

// Release is a marketplace database release or master.
type Release struct {
	ID              int64
	Title           string
	Artists         []string
	Year            int
	Labels          []string
	Formats         []string
	MasterID        int64
	IsMaster        bool
	CommunityRating float64
	Have            int
	Want            int
}

// NewRelease validates and constructs a Release.
func NewRelease(id int64, title string, artists []string) (Release, error) {
	title = strings.TrimSpace(title)
	if id <= 0 {
		return Release{}, services.Wrap(services.ErrValidation, "music", "release",
			fmt.Sprintf("release id %d is not positive", id), nil)
	}
	if title == "" {
		return Release{}, services.Wrap(services.ErrValidation, "music", "release", "title must not be empty", nil)
	}
	cleaned := make([]string, 0, len(artists))
	for _, artist := range artists {
		if trimmed := strings.TrimSpace(artist); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return Release{}, services.Wrap(services.ErrValidation, "music", "release", "at least one artist is required", nil)
	}
	return Release{ID: id, Title: title, Artists: cleaned}, nil
}

// MatchesRecordingMetadata reports whether this release is consistent with
// the recording's performer, label, and year hints. The year is compared
// only when both sides know it; a performer or label hint must be satisfied
// by the release's credits, so a candidate listing no labels fails a label
// hint. A recording with no hints accepts any release.
func (r Release) MatchesRecordingMetadata(performer, label string, year int) bool {
	if year != 0 && r.Year != 0 {
		if abs(r.Year-year) > 2 {
			return false
		}
	}

	if performer != "" {
		found := false
		for _, artist := range r.Artists {
			if EitherContainsFold(artist, performer) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if label != "" {
		found := false
		for _, candidate := range r.Labels {
			if EitherContainsFold(candidate, label) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// EitherContainsFold reports whether either string contains the other,
// case-insensitively. Empty strings never match.
func EitherContainsFold(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SearchResult records the outcome of a marketplace lookup for a recording.
// Release is nil when no candidate passed the metadata filter.
type SearchResult struct {
	Recording    Recording
	Release      *Release
	Query        string
	ResultsFound int
}

// NewSearchResult validates and constructs a SearchResult.
func NewSearchResult(recording Recording, release *Release, query string, resultsFound int) (SearchResult, error) {
	if resultsFound < 0 {
		return SearchResult{}, services.Wrap(services.ErrValidation, "music", "search result",
			"results found must not be negative", nil)
	}
	return SearchResult{
		Recording:    recording,
		Release:      release,
		Query:        strings.TrimSpace(query),
		ResultsFound: resultsFound,
	}, nil
}

// FoundRelease reports whether the lookup produced a release.
func (s SearchResult) FoundRelease() bool {
	return s.Release != nil
}
