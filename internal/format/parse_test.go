package format

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/katapios/lazybones/internal/model"
)

func TestParse_RoundTripsFormattedReport(t *testing.T) {
	original := model.Report{
		Date:      mustDay(t, "2026-03-01"),
		Type:      model.ReportTypeRegular,
		GoodItems: []string{"morning run", "fixed the leak"},
		BadItems:  []string{"slept late"},
	}

	candidates, err := Parse(Format(original))
	if err != nil {
		t.Fatalf("parsing formatted report: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if got := c.Date.Format(model.DayLayout); got != original.Day() {
		t.Errorf("day mismatch: got %s, want %s", got, original.Day())
	}
	if !reflect.DeepEqual(c.GoodItems, original.GoodItems) {
		t.Errorf("good items mismatch: got %v, want %v", c.GoodItems, original.GoodItems)
	}
	if !reflect.DeepEqual(c.BadItems, original.BadItems) {
		t.Errorf("bad items mismatch: got %v, want %v", c.BadItems, original.BadItems)
	}
}

func TestParse_RoundTripsMultipleBlocks(t *testing.T) {
	reports := []model.Report{
		{Date: mustDay(t, "2026-03-01"), GoodItems: []string{"a", "b"}, BadItems: []string{"c"}},
		{Date: mustDay(t, "2026-03-02"), GoodItems: []string{"d"}},
		{Date: mustDay(t, "2026-03-03"), BadItems: []string{"e"}},
	}

	candidates, err := Parse(FormatAll(reports, false))
	if err != nil {
		t.Fatalf("parsing formatted reports: %v", err)
	}
	if len(candidates) != len(reports) {
		t.Fatalf("expected %d candidates, got %d", len(reports), len(candidates))
	}
	for i, c := range candidates {
		if got := c.Date.Format(model.DayLayout); got != reports[i].Day() {
			t.Errorf("block %d: day mismatch: got %s, want %s", i, got, reports[i].Day())
		}
	}
}

func TestParse_ToleratesMarkerVariants(t *testing.T) {
	cases := []struct {
		name string
		text string
		good []string
		bad  []string
	}{
		{
			name: "heavy check glyph",
			text: "✅ good:\n• a\n❌ bad:\n• b\n",
			good: []string{"a"},
			bad:  []string{"b"},
		},
		{
			name: "case-insensitive labels",
			text: "GOOD things\n- a\nBad stuff\n- b\n",
			good: []string{"a"},
			bad:  []string{"b"},
		},
		{
			name: "dash and asterisk bullets",
			text: "✓ good:\n- a\n* b\nplain c\n",
			good: []string{"a", "b", "plain c"},
		},
		{
			name: "long editor separator",
			text: "✓ good:\n• a\n--------------------\n✓ good:\n• b\n",
			good: []string{"a"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidates, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("parsing: %v", err)
			}
			c := candidates[0]
			if !reflect.DeepEqual(c.GoodItems, tc.good) {
				t.Errorf("good items: got %v, want %v", c.GoodItems, tc.good)
			}
			if !reflect.DeepEqual(c.BadItems, tc.bad) {
				t.Errorf("bad items: got %v, want %v", c.BadItems, tc.bad)
			}
		})
	}
}

func TestParse_BlankLineClosesSection(t *testing.T) {
	text := "✓ good:\n• kept\n\nstray line outside any section\n✗ bad:\n• also kept\n"

	candidates, err := Parse(text)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	c := candidates[0]
	if !reflect.DeepEqual(c.GoodItems, []string{"kept"}) {
		t.Errorf("expected stray line dropped, got %v", c.GoodItems)
	}
	if !reflect.DeepEqual(c.BadItems, []string{"also kept"}) {
		t.Errorf("bad items: got %v", c.BadItems)
	}
}

func TestParse_AuthorLine(t *testing.T) {
	text := "# 2026-03-01\n@ @kat\n✓ good:\n• a\n"

	candidates, err := Parse(text)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if candidates[0].Author != "@kat" {
		t.Errorf("expected author @kat, got %q", candidates[0].Author)
	}
}

func TestParse_MalformedDateHeaderIsIgnored(t *testing.T) {
	text := "# not a date\n✓ good:\n• a\n"

	candidates, err := Parse(text)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if !candidates[0].Date.IsZero() {
		t.Errorf("expected zero date for malformed header, got %v", candidates[0].Date)
	}
	if !reflect.DeepEqual(candidates[0].GoodItems, []string{"a"}) {
		t.Errorf("items should survive a bad header, got %v", candidates[0].GoodItems)
	}
}

func TestParse_RecoverableBlockAmongGarbage(t *testing.T) {
	text := "random prose nobody structured\n\n" +
		"----------\n" +
		"# 2026-03-01\n✓ good:\n• the one real item\n" +
		"----------\n" +
		"more trailing noise\n"

	candidates, err := Parse(text)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 recoverable block, got %d", len(candidates))
	}
	if !reflect.DeepEqual(candidates[0].GoodItems, []string{"the one real item"}) {
		t.Errorf("got %v", candidates[0].GoodItems)
	}
}

func TestParse_NothingRecoverable(t *testing.T) {
	cases := []string{
		"",
		"\n\n\n",
		"just prose with no markers at all",
		"# 2026-03-01\n",
		"✓ good:\n✗ bad:\n",
	}

	for _, text := range cases {
		if _, err := Parse(text); !errors.Is(err, ErrNoReportsFound) {
			t.Errorf("Parse(%q): expected ErrNoReportsFound, got %v", text, err)
		}
	}
}

func TestCandidate_ReportDefaultsMissingDate(t *testing.T) {
	now := mustDay(t, "2026-03-05")
	c := Candidate{GoodItems: []string{"a"}}

	r := c.Report(model.ReportTypeShared, now)
	if r.Day() != "2026-03-05" {
		t.Errorf("expected defaulted day 2026-03-05, got %s", r.Day())
	}
	if r.Type != model.ReportTypeShared {
		t.Errorf("expected shared type, got %s", r.Type)
	}

	dated := Candidate{Date: mustDay(t, "2026-03-01"), GoodItems: []string{"a"}}
	r = dated.Report(model.ReportTypeShared, now)
	if r.Day() != "2026-03-01" {
		t.Errorf("expected candidate's own day, got %s", r.Day())
	}
}

func TestCandidate_RenderedIsStable(t *testing.T) {
	now := time.Now()
	c := Candidate{
		Date:      mustDay(t, "2026-03-01"),
		GoodItems: []string{"a"},
		BadItems:  []string{"b"},
	}
	if c.Rendered(now) != c.Rendered(now) {
		t.Error("Rendered must be deterministic")
	}

	// The dedup key must survive a round trip through the store's own
	// rendering of the materialized report.
	r := c.Report(model.ReportTypeShared, now)
	if Format(r) != c.Rendered(now) {
		t.Errorf("rendered candidate and formatted report diverge:\n%s\nvs\n%s",
			c.Rendered(now), Format(r))
	}

	// An undated candidate keys on the same defaulted day the stored
	// report gets.
	undated := Candidate{GoodItems: []string{"a"}}
	if Format(undated.Report(model.ReportTypeShared, now)) != undated.Rendered(now) {
		t.Error("undated candidate's key diverges from its stored rendering")
	}
}
