// Package ranking scores streaming catalog albums against recommended
// recordings, preferring the best available performance over the closest
// metadata match.
package ranking

import (
	"log/slog"
	"sort"

	"podium/internal/canon"
	"podium/internal/logging"
	"podium/internal/music"
)

// Scoring weights. An exact marketplace match short-circuits to 1.0; the
// label weight stays latent because the catalog API does not expose labels.
const (
	weightPerformer  = 0.50
	weightLabel      = 0.35
	weightPopularity = 0.15
)

// ScoredAlbum pairs a candidate with its quality score.
type ScoredAlbum struct {
	Album music.Album
	Score float64
}

// Ranker orders catalog albums by recording quality.
type Ranker struct {
	logger *slog.Logger
}

// New constructs a Ranker. A nil logger disables logging.
func New(logger *slog.Logger) *Ranker {
	return &Ranker{logger: logging.NewComponentLogger(logger, "ranker")}
}

// Score rates one album from 0.0 to 1.0. A release confirmed by the
// marketplace lookup that exactly matches the album yields 1.0; otherwise
// the score blends canonical performer status with normalized popularity.
// maxPopularity normalizes popularity across the candidate set.
func (r *Ranker) Score(album music.Album, release *music.Release, maxPopularity float64) float64 {
	if release != nil && isExactMatch(album, *release) {
		return 1.0
	}

	score := weightPerformer * performerScore(album.Artists)

	if maxPopularity > 0 {
		score += weightPopularity * (album.Popularity / maxPopularity)
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Rank scores every candidate and returns them ordered by descending
// score. Ties keep the candidate order the catalog returned.
func (r *Ranker) Rank(albums []music.Album, release *music.Release) []ScoredAlbum {
	if len(albums) == 0 {
		return nil
	}

	maxPopularity := 0.0
	for _, album := range albums {
		if album.Popularity > maxPopularity {
			maxPopularity = album.Popularity
		}
	}

	scored := make([]ScoredAlbum, 0, len(albums))
	for _, album := range albums {
		score := r.Score(album, release, maxPopularity)
		scored = append(scored, ScoredAlbum{Album: album, Score: score})
		r.logger.Debug("scored album",
			logging.String("title", album.Title),
			logging.String("artist", album.PrimaryArtist()),
			logging.Float64(logging.FieldScore, score))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// FindBest returns the top-ranked album when it reaches minScore.
func (r *Ranker) FindBest(albums []music.Album, release *music.Release, minScore float64) (ScoredAlbum, bool) {
	ranked := r.Rank(albums, release)
	if len(ranked) == 0 {
		return ScoredAlbum{}, false
	}
	best := ranked[0]
	if best.Score < minScore {
		r.logger.Debug("best candidate below threshold",
			logging.String("title", best.Album.Title),
			logging.Float64(logging.FieldScore, best.Score),
			logging.Float64("min_score", minScore))
		return ScoredAlbum{}, false
	}
	return best, true
}

// isExactMatch requires at least two strong signals tying the album to the
// marketplace release: title containment, title-plus-artist agreement, and
// year agreement within one year.
func isExactMatch(album music.Album, release music.Release) bool {
	matches := 0

	if music.EitherContainsFold(release.Title, album.Title) {
		matches++
	}
	if album.MatchesReleaseMetadata(release) {
		matches++
	}
	if release.Year != 0 && album.Year() != 0 {
		diff := release.Year - album.Year()
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 {
			matches++
		}
	}

	return matches >= 2
}

// performerScore returns the best canonical score among the credited
// artists. One canonical performer is enough to mark a quality recording.
func performerScore(artists []string) float64 {
	best := 0.0
	for _, artist := range artists {
		if score := canon.PerformerScore(artist); score > best {
			best = score
		}
	}
	return best
}
