package matchcache

import "podium/internal/music"

// lookupPayload is the stored form of a marketplace lookup outcome. The
// recording identity lives in the row columns; only the outcome is encoded.
type lookupPayload struct {
	Query        string          `json:"query"`
	ResultsFound int             `json:"results_found"`
	Release      *releasePayload `json:"release"`
}

type releasePayload struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Artists         []string `json:"artists"`
	Year            int      `json:"year,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Formats         []string `json:"formats,omitempty"`
	MasterID        int64    `json:"master_id,omitempty"`
	IsMaster        bool     `json:"is_master,omitempty"`
	CommunityRating float64  `json:"community_rating,omitempty"`
	Have            int      `json:"have,omitempty"`
	Want            int      `json:"want,omitempty"`
}

type albumPayload struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Artists         []string `json:"artists"`
	ReleaseDate     string   `json:"release_date,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	TrackCount      int      `json:"track_count,omitempty"`
	Popularity      float64  `json:"popularity,omitempty"`
	AudioQuality    string   `json:"audio_quality,omitempty"`
}

func newLookupPayload(result music.SearchResult) lookupPayload {
	payload := lookupPayload{
		Query:        result.Query,
		ResultsFound: result.ResultsFound,
	}
	if result.Release != nil {
		payload.Release = &releasePayload{
			ID:              result.Release.ID,
			Title:           result.Release.Title,
			Artists:         result.Release.Artists,
			Year:            result.Release.Year,
			Labels:          result.Release.Labels,
			Formats:         result.Release.Formats,
			MasterID:        result.Release.MasterID,
			IsMaster:        result.Release.IsMaster,
			CommunityRating: result.Release.CommunityRating,
			Have:            result.Release.Have,
			Want:            result.Release.Want,
		}
	}
	return payload
}

func (p lookupPayload) toSearchResult(rec music.Recording) music.SearchResult {
	result := music.SearchResult{
		Recording:    rec,
		Query:        p.Query,
		ResultsFound: p.ResultsFound,
	}
	if p.Release != nil {
		result.Release = &music.Release{
			ID:              p.Release.ID,
			Title:           p.Release.Title,
			Artists:         p.Release.Artists,
			Year:            p.Release.Year,
			Labels:          p.Release.Labels,
			Formats:         p.Release.Formats,
			MasterID:        p.Release.MasterID,
			IsMaster:        p.Release.IsMaster,
			CommunityRating: p.Release.CommunityRating,
			Have:            p.Release.Have,
			Want:            p.Release.Want,
		}
	}
	return result
}

func newAlbumPayload(album music.Album) albumPayload {
	return albumPayload{
		ID:              album.ID,
		Title:           album.Title,
		Artists:         album.Artists,
		ReleaseDate:     album.ReleaseDate,
		DurationSeconds: album.DurationSeconds,
		TrackCount:      album.TrackCount,
		Popularity:      album.Popularity,
		AudioQuality:    album.AudioQuality,
	}
}

func (p albumPayload) toAlbum() music.Album {
	return music.Album{
		ID:              p.ID,
		Title:           p.Title,
		Artists:         p.Artists,
		ReleaseDate:     p.ReleaseDate,
		DurationSeconds: p.DurationSeconds,
		TrackCount:      p.TrackCount,
		Popularity:      p.Popularity,
		AudioQuality:    p.AudioQuality,
	}
}
