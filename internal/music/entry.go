package music

import (
	"strings"

	"podium/internal/services"
)

// Entry is one recommendation list entry: a primary recording plus any
// alternate recordings of the same work, in preference order.
type Entry struct {
	Primary    Recording
	Alternates []Recording
}

// NewEntry validates and constructs an Entry. Alternates must refer to the
// same composer and work as the primary recording.
func NewEntry(primary Recording, alternates []Recording) (Entry, error) {
	if primary.Composer == "" || primary.Work == "" {
		return Entry{}, services.Wrap(services.ErrValidation, "music", "entry", "primary recording is incomplete", nil)
	}
	for _, alt := range alternates {
		if !strings.EqualFold(alt.Composer, primary.Composer) || !strings.EqualFold(alt.Work, primary.Work) {
			return Entry{}, services.Wrap(services.ErrValidation, "music", "entry",
				"alternate recording refers to a different work", nil)
		}
	}
	return Entry{Primary: primary, Alternates: alternates}, nil
}

// AllRecordings returns the primary recording followed by the alternates,
// preserving preference order.
func (e Entry) AllRecordings() []Recording {
	recordings := make([]Recording, 0, 1+len(e.Alternates))
	recordings = append(recordings, e.Primary)
	recordings = append(recordings, e.Alternates...)
	return recordings
}

func (e Entry) String() string {
	return e.Primary.Composer + ": " + e.Primary.Work
}
