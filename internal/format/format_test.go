package format

import (
	"strings"
	"testing"
	"time"

	"github.com/katapios/lazybones/internal/model"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(model.DayLayout, s, time.Local)
	if err != nil {
		t.Fatalf("parsing day %q: %v", s, err)
	}
	return d
}

func TestFormat_FullReport(t *testing.T) {
	r := model.Report{
		Date:      mustDay(t, "2026-03-01"),
		Type:      model.ReportTypeRegular,
		GoodItems: []string{"morning run", "fixed the leak"},
		BadItems:  []string{"slept late"},
	}

	want := "# 2026-03-01\n" +
		"✓ good:\n" +
		"• morning run\n" +
		"• fixed the leak\n" +
		"✗ bad:\n" +
		"• slept late\n"

	if got := Format(r); got != want {
		t.Errorf("Format mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormat_OmitsEmptySections(t *testing.T) {
	r := model.Report{
		Date:      mustDay(t, "2026-03-01"),
		GoodItems: []string{"only good things"},
	}

	got := Format(r)
	if strings.Contains(got, BadMarker) {
		t.Errorf("empty bad section should be omitted:\n%s", got)
	}

	r = model.Report{
		Date:     mustDay(t, "2026-03-01"),
		BadItems: []string{"only bad things"},
	}
	got = Format(r)
	if strings.Contains(got, GoodMarker) {
		t.Errorf("empty good section should be omitted:\n%s", got)
	}
}

func TestFormatAll_SeparatesBlocks(t *testing.T) {
	reports := []model.Report{
		{Date: mustDay(t, "2026-03-01"), GoodItems: []string{"a"}},
		{Date: mustDay(t, "2026-03-02"), GoodItems: []string{"b"}},
	}

	got := FormatAll(reports, false)
	if strings.Count(got, Separator) != 1 {
		t.Errorf("expected exactly one separator between two blocks:\n%s", got)
	}
	if !strings.Contains(got, "# 2026-03-01") || !strings.Contains(got, "# 2026-03-02") {
		t.Errorf("expected both date headers:\n%s", got)
	}
}

func TestFormatAll_ProvenanceLine(t *testing.T) {
	cases := []struct {
		name   string
		report model.Report
		want   string
	}{
		{
			name: "local report",
			report: model.Report{
				Date:      mustDay(t, "2026-03-01"),
				Type:      model.ReportTypeRegular,
				GoodItems: []string{"a"},
			},
			want: "@ local",
		},
		{
			name: "external with handle",
			report: model.Report{
				Date:         mustDay(t, "2026-03-01"),
				Type:         model.ReportTypeExternal,
				AuthorHandle: "@kat",
				AuthorName:   "Kat",
				GoodItems:    []string{"a"},
			},
			want: "@ @kat",
		},
		{
			name: "external name fallback",
			report: model.Report{
				Date:       mustDay(t, "2026-03-01"),
				Type:       model.ReportTypeExternal,
				AuthorName: "Kat",
				GoodItems:  []string{"a"},
			},
			want: "@ Kat",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatAll([]model.Report{tc.report}, true)
			if !strings.Contains(got, tc.want+"\n") {
				t.Errorf("expected provenance line %q in:\n%s", tc.want, got)
			}
		})
	}
}

func TestFormatAll_WithoutProvenanceHasNoAuthorLine(t *testing.T) {
	r := model.Report{
		Date:         mustDay(t, "2026-03-01"),
		Type:         model.ReportTypeExternal,
		AuthorHandle: "@kat",
		GoodItems:    []string{"a"},
	}
	got := FormatAll([]model.Report{r}, false)
	if strings.Contains(got, "@ ") {
		t.Errorf("expected no provenance line:\n%s", got)
	}
}
