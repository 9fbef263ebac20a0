// Package recommend parses recommendation list pages into structured
// entries the match pipeline can process.
package recommend

import (
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"podium/internal/logging"
	"podium/internal/music"
)

const recordingPrefix = "Recommended recording:"

var (
	tableRe = regexp.MustCompile(`(?is)<table[^>]*>(.*?)</table>`)
	tagRe   = regexp.MustCompile(`(?s)<br[^>]*>`)
	stripRe = regexp.MustCompile(`(?s)<[^>]+>`)
	parenRe = regexp.MustCompile(`\(([^)]+)\)`)
	// A plain year or a year range such as "1963-73" or "1985 & 1988".
	yearRe = regexp.MustCompile(`^(\d{4})(?:\s*[-&]\s*\d{2,4})?$`)
)

var titleCaser = cases.Title(language.English)

// Parser extracts entries from recommendation pages.
type Parser struct {
	logger *slog.Logger
}

// NewParser constructs a Parser. A nil logger disables logging.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logging.NewComponentLogger(logger, "recommend")}
}

// ParseHTML extracts all entries from the first table of the page. Blocks
// separated by blank lines each yield one entry; blocks that do not follow
// the expected two-line shape are skipped.
func (p *Parser) ParseHTML(page string) []music.Entry {
	match := tableRe.FindStringSubmatch(page)
	if match == nil {
		p.logger.Warn("page carried no table, nothing to parse")
		return nil
	}

	text := tagRe.ReplaceAllString(match[1], "\n")
	text = stripRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var entries []music.Entry
	var block []string
	flush := func() {
		if len(block) == 0 {
			return
		}
		if entry, ok := p.parseBlock(block); ok {
			entries = append(entries, entry)
		}
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	p.logger.Info("parsed recommendation page", logging.Int("entry_count", len(entries)))
	return entries
}

// parseBlock handles one two-line block: "Composer: Work" followed by
// "Recommended recording: ...".
func (p *Parser) parseBlock(lines []string) (music.Entry, bool) {
	if len(lines) < 2 {
		return music.Entry{}, false
	}

	composer, work, ok := strings.Cut(lines[0], ":")
	if !ok {
		return music.Entry{}, false
	}
	composer = normalizeComposer(composer)
	work = strings.TrimSpace(work)
	if composer == "" || work == "" {
		return music.Entry{}, false
	}

	if !strings.HasPrefix(lines[1], recordingPrefix) {
		return music.Entry{}, false
	}
	recordingText := strings.TrimSpace(strings.TrimPrefix(lines[1], recordingPrefix))

	primary, alternates := p.parseRecordings(composer, work, recordingText)
	if primary == nil {
		p.logger.Debug("skipping block with unparseable recording",
			logging.String("composer", composer),
			logging.String("work", work))
		return music.Entry{}, false
	}

	entry, err := music.NewEntry(*primary, alternates)
	if err != nil {
		p.logger.Debug("skipping invalid entry", logging.Error(err))
		return music.Entry{}, false
	}
	return entry, true
}

// parseRecordings splits the recording text into a primary recording and
// alternates. "A or B" lists alternates inline; "(also X, Y)" appends them
// after the primary.
func (p *Parser) parseRecordings(composer, work, text string) (*music.Recording, []music.Recording) {
	if strings.Contains(text, " or ") && !strings.Contains(text, "(also") {
		parts := strings.Split(text, " or ")
		primary := p.parseSingle(composer, work, strings.TrimSpace(parts[0]))
		var alternates []music.Recording
		for _, part := range parts[1:] {
			if alt := p.parseSingle(composer, work, strings.TrimSpace(part)); alt != nil {
				alternates = append(alternates, *alt)
			}
		}
		return primary, alternates
	}

	if primaryText, alternateText, ok := strings.Cut(text, "(also"); ok {
		alternateText = strings.TrimSpace(alternateText)
		alternateText = strings.TrimSuffix(alternateText, ")")

		primary := p.parseSingle(composer, work, strings.TrimSpace(primaryText))
		var alternates []music.Recording
		for _, part := range splitList(alternateText) {
			if alt := p.parseSingle(composer, work, part); alt != nil {
				alternates = append(alternates, *alt)
			}
		}
		return primary, alternates
	}

	return p.parseSingle(composer, work, text), nil
}

// parseSingle parses one recording reference: "Performer (1997)",
// "Performer (Label)", "Performer on Label", or a bare performer name.
func (p *Parser) parseSingle(composer, work, text string) *music.Recording {
	if text == "" {
		return nil
	}

	var performer, label string
	var year int

	switch {
	case strings.Contains(text, " on "):
		before, after, _ := strings.Cut(text, " on ")
		performer = strings.TrimSpace(before)
		label = strings.Trim(strings.TrimSpace(after), "()")
	case strings.Contains(text, "(") && strings.Contains(text, ")"):
		loc := parenRe.FindStringSubmatchIndex(text)
		if loc != nil {
			content := strings.TrimSpace(text[loc[2]:loc[3]])
			performer = strings.TrimSpace(text[:loc[0]])
			if m := yearRe.FindStringSubmatch(content); m != nil {
				year, _ = strconv.Atoi(m[1])
			} else {
				label = content
			}
		}
	default:
		performer = strings.TrimSpace(text)
	}

	if performer == "" {
		return nil
	}

	rec, err := music.NewRecording(composer, work, performer, year, label)
	if err != nil {
		p.logger.Debug("skipping invalid recording", logging.Error(err))
		return nil
	}
	return &rec
}

// normalizeComposer trims the composer name and title-cases names the page
// renders in all capitals.
func normalizeComposer(name string) string {
	name = strings.TrimSpace(name)
	if name != "" && name == strings.ToUpper(name) && strings.ContainsAny(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

func splitList(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
