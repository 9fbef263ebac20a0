package music

import (
	"fmt"
	"strings"

	"podium/internal/services"
)

// Recording is a single recommended performance of a work.
type Recording struct {
	Composer  string
	Work      string
	Performer string
	Year      int
	Label     string
}

// NewRecording validates and constructs a Recording. Performer, Year, and
// Label are optional; Year of zero means unknown.
func NewRecording(composer, work, performer string, year int, label string) (Recording, error) {
	composer = strings.TrimSpace(composer)
	work = strings.TrimSpace(work)
	if composer == "" {
		return Recording{}, services.Wrap(services.ErrValidation, "music", "recording", "composer must not be empty", nil)
	}
	if work == "" {
		return Recording{}, services.Wrap(services.ErrValidation, "music", "recording", "work must not be empty", nil)
	}
	if year != 0 && (year < 1000 || year > 2100) {
		return Recording{}, services.Wrap(services.ErrValidation, "music", "recording",
			fmt.Sprintf("year %d is out of range", year), nil)
	}
	return Recording{
		Composer:  composer,
		Work:      work,
		Performer: strings.TrimSpace(performer),
		Year:      year,
		Label:     strings.TrimSpace(label),
	}, nil
}

// SearchQuery returns the catalog search text for this recording.
func (r Recording) SearchQuery() string {
	return r.Composer + " " + r.Work
}

func (r Recording) String() string {
	parts := []string{r.Composer + ": " + r.Work}
	if r.Performer != "" {
		parts = append(parts, r.Performer)
	}
	if r.Year != 0 {
		parts = append(parts, fmt.Sprintf("%d", r.Year))
	}
	if r.Label != "" {
		parts = append(parts, r.Label)
	}
	return strings.Join(parts, ", ")
}
