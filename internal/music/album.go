package music

import (
	"fmt"
	"strings"

	"podium/internal/services"
)

// Album is a streaming catalog album candidate.
type Album struct {
	ID              int64
	Title           string
	Artists         []string
	ReleaseDate     string
	DurationSeconds int
	TrackCount      int
	Popularity      float64
	AudioQuality    string
}

// NewAlbum validates and constructs an Album.
func NewAlbum(id int64, title string, artists []string) (Album, error) {
	title = strings.TrimSpace(title)
	if id <= 0 {
		return Album{}, services.Wrap(services.ErrValidation, "music", "album",
			fmt.Sprintf("album id %d is not positive", id), nil)
	}
	if title == "" {
		return Album{}, services.Wrap(services.ErrValidation, "music", "album", "title must not be empty", nil)
	}
	cleaned := make([]string, 0, len(artists))
	for _, artist := range artists {
		if trimmed := strings.TrimSpace(artist); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return Album{}, services.Wrap(services.ErrValidation, "music", "album", "at least one artist is required", nil)
	}
	return Album{ID: id, Title: title, Artists: cleaned}, nil
}

// Year returns the release year parsed from the leading digits of
// ReleaseDate, or zero when unknown.
func (a Album) Year() int {
	if len(a.ReleaseDate) < 4 {
		return 0
	}
	year := 0
	for _, r := range a.ReleaseDate[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}

// MatchesReleaseMetadata reports whether this album is consistent with a
// marketplace release: the titles must contain one another and at least one
// artist pair must contain one another. Years are not compared, so a
// reissue of the same recording still matches.
func (a Album) MatchesReleaseMetadata(release Release) bool {
	if !EitherContainsFold(a.Title, release.Title) {
		return false
	}
	if len(release.Artists) > 0 {
		matched := false
		for _, releaseArtist := range release.Artists {
			for _, albumArtist := range a.Artists {
				if EitherContainsFold(releaseArtist, albumArtist) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// PrimaryArtist returns the first credited artist.
func (a Album) PrimaryArtist() string {
	if len(a.Artists) == 0 {
		return ""
	}
	return a.Artists[0]
}
