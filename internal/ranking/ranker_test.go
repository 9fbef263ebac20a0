package ranking_test

import (
	"math"
	"testing"

	"podium/internal/music"
	"podium/internal/ranking"
)

func album(t *testing.T, id int64, title, artist string) music.Album {
	t.Helper()
	a, err := music.NewAlbum(id, title, []string{artist})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestExactMarketplaceMatchScoresOne(t *testing.T) {
	release, err := music.NewRelease(42, "Brandenburg Concertos", []string{"Il Giardino Armonico"})
	if err != nil {
		t.Fatal(err)
	}
	release.Year = 1997

	candidate := album(t, 9, "Bach: Brandenburg Concertos", "Il Giardino Armonico")
	candidate.ReleaseDate = "1997-03-14"

	ranker := ranking.New(nil)
	if got := ranker.Score(candidate, &release, 100); got != 1.0 {
		t.Errorf("exact match should score 1.0, got %v", got)
	}
}

func TestReissueWithMatchingTitleAndArtistIsExact(t *testing.T) {
	release, err := music.NewRelease(42, "Brandenburg Concertos", []string{"Il Giardino Armonico"})
	if err != nil {
		t.Fatal(err)
	}
	release.Year = 1963

	// Same recording reissued decades later: title and artist agree even
	// though the years are far apart.
	candidate := album(t, 9, "Bach: Brandenburg Concertos", "Il Giardino Armonico")
	candidate.ReleaseDate = "1999-01-01"

	ranker := ranking.New(nil)
	if got := ranker.Score(candidate, &release, 100); got != 1.0 {
		t.Errorf("reissue with matching title and artist should score 1.0, got %v", got)
	}
}

func TestCanonicalPerformerDominatesScore(t *testing.T) {
	candidate := album(t, 9, "Brandenburg Concertos", "Il Giardino Armonico")

	ranker := ranking.New(nil)
	got := ranker.Score(candidate, nil, 100)
	if got < 0.50 {
		t.Errorf("canonical performer should guarantee at least 0.50, got %v", got)
	}
}

func TestPopularityOnlyScore(t *testing.T) {
	candidate := album(t, 9, "Symphonies", "Unknown Orchestra")
	candidate.Popularity = 50

	ranker := ranking.New(nil)
	got := ranker.Score(candidate, nil, 100)
	if math.Abs(got-0.075) > 1e-9 {
		t.Errorf("non-canonical performer at half max popularity should score 0.075, got %v", got)
	}
}

func TestRankDescendingStable(t *testing.T) {
	canonical := album(t, 1, "Brandenburg Concertos", "Il Giardino Armonico")
	popular := album(t, 2, "Brandenburg Concertos", "Nobody Ensemble")
	popular.Popularity = 100
	obscure := album(t, 3, "Brandenburg Concertos", "Someone Else Entirely")

	ranker := ranking.New(nil)
	ranked := ranker.Rank([]music.Album{popular, canonical, obscure}, nil)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 scored albums, got %d", len(ranked))
	}
	if ranked[0].Album.ID != 1 {
		t.Errorf("canonical performer should rank first, got album %d", ranked[0].Album.ID)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("ranking not descending at %d: %v after %v", i, ranked[i].Score, ranked[i-1].Score)
		}
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	first := album(t, 1, "Symphony", "Band A")
	second := album(t, 2, "Symphony", "Band B")

	ranker := ranking.New(nil)
	ranked := ranker.Rank([]music.Album{first, second}, nil)

	if ranked[0].Album.ID != 1 || ranked[1].Album.ID != 2 {
		t.Errorf("equal scores should preserve input order, got %d then %d",
			ranked[0].Album.ID, ranked[1].Album.ID)
	}
}

func TestFindBestHonorsThreshold(t *testing.T) {
	weak := album(t, 1, "Symphony", "Nobody Ensemble")
	weak.Popularity = 10

	ranker := ranking.New(nil)
	if _, ok := ranker.FindBest([]music.Album{weak}, nil, 0.30); ok {
		t.Error("candidate below threshold should be rejected")
	}

	strong := album(t, 2, "Symphony", "Berlin Philharmonic")
	best, ok := ranker.FindBest([]music.Album{weak, strong}, nil, 0.30)
	if !ok {
		t.Fatal("canonical performer should pass the threshold")
	}
	if best.Album.ID != 2 {
		t.Errorf("expected album 2 as best, got %d", best.Album.ID)
	}
}

func TestFindBestEmptyInput(t *testing.T) {
	ranker := ranking.New(nil)
	if _, ok := ranker.FindBest(nil, nil, 0.0); ok {
		t.Error("empty candidate list should not produce a match")
	}
}

func TestExactMatchNeedsTwoSignals(t *testing.T) {
	release, err := music.NewRelease(42, "Brandenburg Concertos", []string{"Il Giardino Armonico"})
	if err != nil {
		t.Fatal(err)
	}
	release.Year = 1997

	// Title agrees but year is far off and the artist differs.
	candidate := album(t, 9, "Brandenburg Concertos", "Completely Different Band")
	candidate.ReleaseDate = "1960-01-01"

	ranker := ranking.New(nil)
	if got := ranker.Score(candidate, &release, 100); got == 1.0 {
		t.Error("single signal should not count as an exact match")
	}
}
