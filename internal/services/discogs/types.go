package discogs

import (
	"bytes"
	"strconv"
	"strings"

	"podium/internal/music"
)

// flexYear tolerates the API returning years as either numbers or strings.
// Unparseable values decode as zero.
type flexYear int

func (y *flexYear) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}
	parsed, err := strconv.Atoi(string(data))
	if err != nil {
		*y = 0
		return nil
	}
	*y = flexYear(parsed)
	return nil
}

type searchResponseDTO struct {
	Results    []searchResultDTO `json:"results"`
	Pagination paginationDTO     `json:"pagination"`
}

type paginationDTO struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Items int `json:"items"`
}

// searchResultDTO covers the fields the search endpoint returns for both
// releases and masters. Search results credit artists inside the title
// ("Artist - Title") rather than in a separate field.
type searchResultDTO struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Title     string       `json:"title"`
	Year      flexYear     `json:"year"`
	Label     []string     `json:"label"`
	Format    []string     `json:"format"`
	MasterID  int64        `json:"master_id"`
	Community communityDTO `json:"community"`
}

type communityDTO struct {
	Have   int       `json:"have"`
	Want   int       `json:"want"`
	Rating ratingDTO `json:"rating"`
}

type ratingDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// releaseDTO covers the release detail endpoint, which credits artists
// explicitly.
type releaseDTO struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Year      flexYear     `json:"year"`
	Artists   []artistDTO  `json:"artists"`
	Labels    []labelDTO   `json:"labels"`
	Formats   []formatDTO  `json:"formats"`
	MasterID  int64        `json:"master_id"`
	Community communityDTO `json:"community"`
}

type artistDTO struct {
	Name string `json:"name"`
}

type labelDTO struct {
	Name string `json:"name"`
}

type formatDTO struct {
	Name string `json:"name"`
}

func (d searchResultDTO) toRelease() (music.Release, error) {
	artists, title := splitCreditedTitle(d.Title)
	release, err := music.NewRelease(d.ID, title, artists)
	if err != nil {
		return music.Release{}, err
	}
	release.Year = int(d.Year)
	release.Labels = d.Label
	release.Formats = d.Format
	release.IsMaster = d.Type == "master"
	if !release.IsMaster {
		release.MasterID = d.MasterID
	}
	release.CommunityRating = d.Community.Rating.Average
	release.Have = d.Community.Have
	release.Want = d.Community.Want
	return release, nil
}

func (d releaseDTO) toRelease() (music.Release, error) {
	artists := make([]string, 0, len(d.Artists))
	for _, artist := range d.Artists {
		artists = append(artists, artist.Name)
	}
	release, err := music.NewRelease(d.ID, d.Title, artists)
	if err != nil {
		return music.Release{}, err
	}
	release.Year = int(d.Year)
	for _, label := range d.Labels {
		release.Labels = append(release.Labels, label.Name)
	}
	for _, format := range d.Formats {
		release.Formats = append(release.Formats, format.Name)
	}
	release.MasterID = d.MasterID
	release.CommunityRating = d.Community.Rating.Average
	release.Have = d.Community.Have
	release.Want = d.Community.Want
	return release, nil
}

// splitCreditedTitle separates "Artist - Title" search result titles into
// the credited artists and the bare title. Titles without a credit yield
// the whole string as both artist and title so metadata matching still has
// something to compare against.
func splitCreditedTitle(credited string) ([]string, string) {
	parts := strings.SplitN(credited, " - ", 2)
	if len(parts) != 2 {
		trimmed := strings.TrimSpace(credited)
		return []string{trimmed}, trimmed
	}
	artist := strings.TrimSpace(parts[0])
	title := strings.TrimSpace(parts[1])
	if artist == "" || title == "" {
		trimmed := strings.TrimSpace(credited)
		return []string{trimmed}, trimmed
	}
	return []string{artist}, title
}
