// Package matching drives the recommendation-to-catalog pipeline: confirm
// the release on the marketplace, search the streaming catalog, and keep
// the highest-quality qualifying album.
package matching

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"podium/internal/logging"
	"podium/internal/music"
	"podium/internal/ranking"
	"podium/internal/services"
)

// ReleaseResolver confirms which marketplace release a recording refers to.
type ReleaseResolver interface {
	SearchRecording(ctx context.Context, rec music.Recording) (music.SearchResult, error)
}

// AlbumFinder locates the best catalog album for a recording.
type AlbumFinder interface {
	FindBestAlbum(ctx context.Context, rec music.Recording, release *music.Release, minScore float64) (ranking.ScoredAlbum, bool, error)
}

// Summary aggregates the outcomes of a batch run.
type Summary struct {
	Total   int
	Exact   int
	Good    int
	Missing int
}

// Orchestrator matches recommendation entries against the catalog.
// The resolver is optional; without it, matching proceeds on ranking
// signals alone.
type Orchestrator struct {
	resolver ReleaseResolver
	finder   AlbumFinder
	minScore float64
	logger   *slog.Logger
}

// New constructs an Orchestrator.
func New(resolver ReleaseResolver, finder AlbumFinder, minScore float64, logger *slog.Logger) (*Orchestrator, error) {
	if finder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "matching", "new", "album finder is required", nil)
	}
	return &Orchestrator{
		resolver: resolver,
		finder:   finder,
		minScore: minScore,
		logger:   logging.NewComponentLogger(logger, "matching"),
	}, nil
}

// MatchEntry processes one entry: the primary recording first, then each
// alternate in preference order, stopping at the first recording whose best
// catalog candidate reaches the score threshold. Service failures degrade
// the result rather than aborting it; the last marketplace lookup is
// retained even when no album qualifies.
func (o *Orchestrator) MatchEntry(ctx context.Context, entry music.Entry) music.MatchOutcome {
	ctx = services.WithEntry(ctx, entry.String())
	logger := logging.WithContext(ctx, o.logger)

	outcome := music.MatchOutcome{Entry: entry}

	for i, rec := range entry.AllRecordings() {
		if ctx.Err() != nil {
			return outcome
		}
		if i > 0 {
			logger.Debug("trying alternate recording",
				logging.String("performer", rec.Performer))
		}

		lookup := o.resolve(ctx, logger, rec)
		if lookup != nil {
			outcome.Lookup = lookup
		}

		var release *music.Release
		if lookup != nil {
			release = lookup.Release
		}

		best, found, err := o.finder.FindBestAlbum(ctx, rec, release, o.minScore)
		if err != nil {
			logger.Warn("catalog search failed",
				logging.String("performer", rec.Performer),
				logging.Error(err))
			continue
		}
		if !found {
			continue
		}

		outcome.Album = &best.Album
		outcome.Score = best.Score
		if i > 0 {
			logger.Info("matched via alternate recording",
				logging.String("performer", rec.Performer),
				logging.Float64(logging.FieldScore, best.Score))
		}
		return outcome
	}

	logger.Warn("no qualifying album found")
	return outcome
}

// ProcessBatch matches every entry and returns outcomes in input order.
// Each batch gets a run ID carried through the context for logging.
func (o *Orchestrator) ProcessBatch(ctx context.Context, entries []music.Entry) []music.MatchOutcome {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)

	o.logger.Info("starting batch",
		logging.String(logging.FieldRunID, runID),
		logging.Int("entry_count", len(entries)))

	outcomes := make([]music.MatchOutcome, 0, len(entries))
	for i, entry := range entries {
		if ctx.Err() != nil {
			o.logger.Warn("batch interrupted",
				logging.String(logging.FieldRunID, runID),
				logging.Int("processed", i))
			break
		}
		o.logger.Info("processing entry",
			logging.String(logging.FieldRunID, runID),
			logging.Int("position", i+1),
			logging.Int("total", len(entries)),
			logging.String(logging.FieldEntry, entry.String()))
		outcomes = append(outcomes, o.MatchEntry(ctx, entry))
	}

	summary := Summarize(outcomes)
	o.logger.Info("batch complete",
		logging.String(logging.FieldRunID, runID),
		logging.Int("exact", summary.Exact),
		logging.Int("good", summary.Good),
		logging.Int("missing", summary.Missing))
	return outcomes
}

// resolve runs the marketplace lookup when a resolver is configured.
// Failures are logged and treated as an absent lookup.
func (o *Orchestrator) resolve(ctx context.Context, logger *slog.Logger, rec music.Recording) *music.SearchResult {
	if o.resolver == nil {
		return nil
	}
	lookup, err := o.resolver.SearchRecording(ctx, rec)
	if err != nil {
		logger.Warn("marketplace lookup failed",
			logging.String("performer", rec.Performer),
			logging.Error(err))
		return nil
	}
	return &lookup
}

// Summarize tallies outcomes into a Summary.
func Summarize(outcomes []music.MatchOutcome) Summary {
	summary := Summary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		switch {
		case outcome.Exact():
			summary.Exact++
		case outcome.Found():
			summary.Good++
		default:
			summary.Missing++
		}
	}
	return summary
}
