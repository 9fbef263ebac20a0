package tidal

import "podium/internal/music"

type searchResponseDTO struct {
	Albums albumListDTO `json:"albums"`
}

type albumListDTO struct {
	Items []albumDTO `json:"items"`
}

type albumDTO struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Artists      []artistDTO `json:"artists"`
	Artist       *artistDTO  `json:"artist"`
	ReleaseDate  string      `json:"releaseDate"`
	Duration     int         `json:"duration"`
	TrackCount   int         `json:"numberOfTracks"`
	Popularity   float64     `json:"popularity"`
	AudioQuality string      `json:"audioQuality"`
}

type artistDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type playlistDTO struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
}

type trackListDTO struct {
	Items []trackDTO `json:"items"`
}

type trackDTO struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func (d albumDTO) toAlbum() (music.Album, error) {
	artists := make([]string, 0, len(d.Artists)+1)
	for _, artist := range d.Artists {
		artists = append(artists, artist.Name)
	}
	if len(artists) == 0 && d.Artist != nil {
		artists = append(artists, d.Artist.Name)
	}

	album, err := music.NewAlbum(d.ID, d.Title, artists)
	if err != nil {
		return music.Album{}, err
	}
	album.ReleaseDate = d.ReleaseDate
	album.DurationSeconds = d.Duration
	album.TrackCount = d.TrackCount
	album.Popularity = d.Popularity
	album.AudioQuality = d.AudioQuality
	return album, nil
}
