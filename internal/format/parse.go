package format

import (
	"errors"
	"strings"
	"time"

	"github.com/katapios/lazybones/internal/model"
)

// ErrNoReportsFound signals that an operation required at least one
// recovered report and the input yielded none. The grammar otherwise
// degrades gracefully: malformed markers cost items, never errors.
var ErrNoReportsFound = errors.New("no reports found in text")

// Candidate is a report recovered from interchange text. It has no
// identity yet; the merge layer decides whether it becomes a stored
// report.
type Candidate struct {
	// Date is the block's day. When the text carried no date header,
	// Date is the zero time and the caller supplies one.
	Date time.Time

	// Author is the provenance line's label, if present.
	Author string

	GoodItems []string
	BadItems  []string
}

// Report materializes the candidate as a report of the given type,
// defaulting a missing date to now.
func (c Candidate) Report(t model.ReportType, now time.Time) model.Report {
	date := c.Date
	if date.IsZero() {
		date = now
	}
	return model.Report{
		Date:         date,
		Type:         t,
		GoodItems:    c.GoodItems,
		BadItems:     c.BadItems,
		AuthorHandle: c.Author,
	}
}

// Rendered returns the candidate's canonical block text as it would
// be stored, defaulting a missing date to now. It is the content
// dedup key for shared-document merges.
func (c Candidate) Rendered(now time.Time) string {
	return Format(c.Report(model.ReportTypeShared, now))
}

// section tracks which item list subsequent lines belong to.
type section int

const (
	sectionNone section = iota
	sectionGood
	sectionBad
)

// Parse scans text line by line and recovers candidate reports.
//
// Markers are matched case- and symbol-insensitively; bullet and dash
// prefixes are stripped; blank lines close the current section;
// unrecognized lines outside a section are ignored. Blocks that yield
// no items are dropped. Returns ErrNoReportsFound when nothing at all
// is recoverable.
func Parse(text string) ([]Candidate, error) {
	var (
		candidates []Candidate
		current    Candidate
		sect       = sectionNone
	)

	flush := func() {
		if len(current.GoodItems) > 0 || len(current.BadItems) > 0 {
			candidates = append(candidates, current)
		}
		current = Candidate{}
		sect = sectionNone
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			// Blank line boundary: the current section ends, the block
			// does not.
			sect = sectionNone

		case isSeparator(line):
			flush()

		case strings.HasPrefix(line, "#"):
			if d, ok := parseDay(strings.TrimSpace(strings.TrimPrefix(line, "#"))); ok {
				current.Date = d
			}
			sect = sectionNone

		case strings.HasPrefix(line, "@"):
			current.Author = strings.TrimSpace(strings.TrimPrefix(line, "@"))
			sect = sectionNone

		case isGoodMarker(line):
			sect = sectionGood

		case isBadMarker(line):
			sect = sectionBad

		default:
			item := stripBullet(line)
			if item == "" {
				continue
			}
			switch sect {
			case sectionGood:
				current.GoodItems = append(current.GoodItems, item)
			case sectionBad:
				current.BadItems = append(current.BadItems, item)
			default:
				// No section open; not ours to keep.
			}
		}
	}
	flush()

	if len(candidates) == 0 {
		return nil, ErrNoReportsFound
	}
	return candidates, nil
}

// isSeparator matches the block separator, tolerating longer runs of
// hyphens or dashes produced by other editors.
func isSeparator(line string) bool {
	if len(line) < len(Separator) {
		return false
	}
	for _, r := range line {
		if r != '-' && r != '–' && r != '—' {
			return false
		}
	}
	return true
}

// isGoodMarker recognizes the good-section header by glyph or label.
func isGoodMarker(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(line, "✓") || strings.HasPrefix(line, "✅") {
		return true
	}
	return strings.HasPrefix(lower, "good")
}

// isBadMarker recognizes the bad-section header by glyph or label.
func isBadMarker(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(line, "✗") || strings.HasPrefix(line, "❌") {
		return true
	}
	return strings.HasPrefix(lower, "bad")
}

// stripBullet removes a leading bullet, dash, or asterisk marker and
// surrounding whitespace from an item line.
func stripBullet(line string) string {
	for _, prefix := range []string{"•", "-", "*"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return strings.TrimSpace(line)
}

// parseDay parses a calendar day in the interchange layout.
func parseDay(s string) (time.Time, bool) {
	d, err := time.ParseInLocation(model.DayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
