package music

// MatchOutcome is the final result of processing one recommendation entry.
// Lookup retains the last marketplace lookup attempted, even when no album
// qualified. Album is nil when no catalog candidate reached the score
// threshold.
type MatchOutcome struct {
	Entry  Entry
	Lookup *SearchResult
	Album  *Album
	Score  float64
}

// Found reports whether a qualifying album was matched.
func (o MatchOutcome) Found() bool {
	return o.Album != nil
}

// Exact reports whether the matched album scored as an exact match.
func (o MatchOutcome) Exact() bool {
	return o.Album != nil && o.Score >= 0.99
}
