package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/katapios/lazybones/internal/format"
	"github.com/katapios/lazybones/internal/ingest"
	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/store"
	"github.com/katapios/lazybones/tests/testutil"
)

// memDocument is an in-memory shared document.
type memDocument struct {
	text string
}

func (d *memDocument) Read(context.Context) (string, error) { return d.text, nil }

func (d *memDocument) Write(_ context.Context, text string) error {
	d.text = text
	return nil
}

func sharedDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(model.DayLayout, s, time.Local)
	if err != nil {
		t.Fatalf("parsing day %q: %v", s, err)
	}
	return d
}

func docText(t *testing.T, reports ...model.Report) string {
	t.Helper()
	return format.FormatAll(reports, true)
}

func TestSelect_FiltersByDayRange(t *testing.T) {
	text := docText(t,
		model.Report{Date: sharedDay(t, "2026-03-01"), GoodItems: []string{"a"}},
		model.Report{Date: sharedDay(t, "2026-03-05"), GoodItems: []string{"b"}},
		model.Report{Date: sharedDay(t, "2026-03-10"), GoodItems: []string{"c"}},
	)

	from := sharedDay(t, "2026-03-02")
	to := sharedDay(t, "2026-03-09")
	candidates, err := ingest.Select(text, ingest.SharedFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("selecting: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate in range, got %d", len(candidates))
	}
	if candidates[0].GoodItems[0] != "b" {
		t.Errorf("wrong candidate survived: %v", candidates[0].GoodItems)
	}
}

func TestSelect_FiltersByProvenance(t *testing.T) {
	text := docText(t,
		model.Report{
			Date: sharedDay(t, "2026-03-01"), Type: model.ReportTypeExternal,
			AuthorHandle: "@kat", GoodItems: []string{"a"},
		},
		model.Report{
			Date: sharedDay(t, "2026-03-02"), Type: model.ReportTypeExternal,
			AuthorHandle: "@someone", GoodItems: []string{"b"},
		},
	)

	who := "@kat"
	candidates, err := ingest.Select(text, ingest.SharedFilter{Provenance: &who})
	if err != nil {
		t.Fatalf("selecting: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Author != "@kat" {
		t.Fatalf("expected only @kat's candidate, got %+v", candidates)
	}
}

func TestSelect_SortsNewestFirst(t *testing.T) {
	text := docText(t,
		model.Report{Date: sharedDay(t, "2026-03-01"), GoodItems: []string{"oldest"}},
		model.Report{Date: sharedDay(t, "2026-03-10"), GoodItems: []string{"newest"}},
		model.Report{Date: sharedDay(t, "2026-03-05"), GoodItems: []string{"middle"}},
	)

	candidates, err := ingest.Select(text, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("selecting: %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	for i, w := range want {
		if candidates[i].GoodItems[0] != w {
			t.Errorf("position %d: expected %s, got %s", i, w, candidates[i].GoodItems[0])
		}
	}
}

func TestSelect_UndatedCandidatesSortLast(t *testing.T) {
	text := "✓ good:\n• undated\n" +
		"----------\n" +
		"# 2026-03-01\n✓ good:\n• dated\n"

	candidates, err := ingest.Select(text, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("selecting: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].GoodItems[0] != "dated" || candidates[1].GoodItems[0] != "undated" {
		t.Errorf("expected undated last, got %v then %v",
			candidates[0].GoodItems, candidates[1].GoodItems)
	}
}

func TestSharedSync_ImportsAndDeduplicates(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	doc := &memDocument{text: docText(t,
		model.Report{Date: sharedDay(t, "2026-03-01"), GoodItems: []string{"a"}},
		model.Report{Date: sharedDay(t, "2026-03-02"), GoodItems: []string{"b"}},
	)}
	pipeline := ingest.NewShared(s, doc, quietLogger())

	added, err := pipeline.Sync(ctx, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 reports imported, got %d", added)
	}

	// Same document again: nothing new.
	added, err = pipeline.Sync(ctx, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if added != 0 {
		t.Errorf("expected idempotent re-sync, got %d added", added)
	}

	reportType := model.ReportTypeShared
	reports, err := s.GetReports(ctx, store.ReportFilter{Type: &reportType})
	if err != nil {
		t.Fatalf("querying reports: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("expected 2 shared reports, got %d", len(reports))
	}
}

func TestSharedSync_SameDayDifferentContentBothKept(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	doc := &memDocument{text: docText(t,
		model.Report{Date: sharedDay(t, "2026-03-01"), GoodItems: []string{"from phone"}},
		model.Report{Date: sharedDay(t, "2026-03-01"), GoodItems: []string{"from laptop"}},
	)}
	pipeline := ingest.NewShared(s, doc, quietLogger())

	added, err := pipeline.Sync(ctx, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("syncing: %v", err)
	}
	if added != 2 {
		t.Errorf("same day, different content: expected both kept, got %d", added)
	}
}

func TestSharedSync_DuplicateBlocksInOneDocument(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	block := model.Report{Date: sharedDay(t, "2026-03-01"), GoodItems: []string{"a"}}
	doc := &memDocument{text: docText(t, block, block)}
	pipeline := ingest.NewShared(s, doc, quietLogger())

	added, err := pipeline.Sync(ctx, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("syncing: %v", err)
	}
	if added != 1 {
		t.Errorf("expected duplicate block collapsed within one pass, got %d", added)
	}
}

func TestSharedSync_EmptyDocumentIsNoOp(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	pipeline := ingest.NewShared(s, &memDocument{}, quietLogger())

	added, err := pipeline.Sync(ctx, ingest.SharedFilter{})
	if err != nil {
		t.Fatalf("syncing empty document: %v", err)
	}
	if added != 0 {
		t.Errorf("expected clean no-op, got %d added", added)
	}
}

func TestSelect_NothingRecoverable(t *testing.T) {
	if _, err := ingest.Select("no structure here", ingest.SharedFilter{}); !errors.Is(err, format.ErrNoReportsFound) {
		t.Fatalf("expected ErrNoReportsFound, got %v", err)
	}
}
