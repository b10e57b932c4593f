package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katapios/lazybones/internal/format"
	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/sharedoc"
	"github.com/katapios/lazybones/internal/store"
)

// SharedFilter narrows which candidates a shared-document pull returns.
type SharedFilter struct {
	// From and To bound the candidate's day, inclusive, when set.
	From *time.Time
	To   *time.Time

	// Provenance matches the candidate's author label exactly, when set.
	Provenance *string
}

// Shared imports reports from the shared cross-device document.
// Dedup is content-based: a candidate whose day and rendered text both
// match an existing shared report is skipped.
type Shared struct {
	store store.Store
	doc   sharedoc.DocumentStore
	log   *logrus.Entry
}

// NewShared creates a shared-document ingestion pipeline.
func NewShared(s store.Store, doc sharedoc.DocumentStore, logger *logrus.Logger) *Shared {
	return &Shared{
		store: s,
		doc:   doc,
		log:   logger.WithField("channel", "shared"),
	}
}

// Select parses interchange text into candidates, applies the filter,
// and sorts newest-first. It is pure: no document or store access.
// Returns format.ErrNoReportsFound when nothing survives parsing.
func Select(text string, filter SharedFilter) ([]format.Candidate, error) {
	candidates, err := format.Parse(text)
	if err != nil {
		return nil, err
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if filter.From != nil && !c.Date.IsZero() &&
			c.Date.Format(model.DayLayout) < filter.From.Format(model.DayLayout) {
			continue
		}
		if filter.To != nil && !c.Date.IsZero() &&
			c.Date.Format(model.DayLayout) > filter.To.Format(model.DayLayout) {
			continue
		}
		if filter.Provenance != nil && c.Author != *filter.Provenance {
			continue
		}
		kept = append(kept, c)
	}

	// Newest first; undated candidates sink to the end.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Date.IsZero() || kept[j].Date.IsZero() {
			return kept[j].Date.IsZero() && !kept[i].Date.IsZero()
		}
		return kept[i].Date.After(kept[j].Date)
	})

	return kept, nil
}

// Pull reads the whole shared document and returns the filtered,
// newest-first candidates.
func (s *Shared) Pull(ctx context.Context, filter SharedFilter) ([]format.Candidate, error) {
	text, err := s.doc.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading shared document: %w", err)
	}
	return Select(text, filter)
}

// Merge stores candidates as shared reports, skipping content
// duplicates, and returns the number added. Dedup decisions run
// against a snapshot of the store taken at the start of the pass.
func (s *Shared) Merge(ctx context.Context, candidates []format.Candidate) (int, error) {
	existing, err := s.renderedByDay(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	added := 0
	skipped := 0
	for _, c := range candidates {
		select {
		case <-ctx.Done():
			return added, ctx.Err()
		default:
		}

		r := c.Report(model.ReportTypeShared, now)
		rendered := c.Rendered(now)

		if contains(existing[r.Day()], rendered) {
			skipped++
			continue
		}

		if err := s.store.SaveReport(ctx, r); err != nil {
			return added, fmt.Errorf("storing shared report: %w", err)
		}
		existing[r.Day()] = append(existing[r.Day()], rendered)
		added++
	}

	s.log.WithFields(logrus.Fields{
		"added":   added,
		"skipped": skipped,
	}).Info("shared merge pass complete")

	return added, nil
}

// Sync pulls the shared document and merges everything it yields. An
// empty document is a clean no-op.
func (s *Shared) Sync(ctx context.Context, filter SharedFilter) (int, error) {
	candidates, err := s.Pull(ctx, filter)
	if errors.Is(err, format.ErrNoReportsFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.Merge(ctx, candidates)
}

// renderedByDay snapshots existing shared reports as day -> rendered
// block texts.
func (s *Shared) renderedByDay(ctx context.Context) (map[string][]string, error) {
	reportType := model.ReportTypeShared
	reports, err := s.store.GetReports(ctx, store.ReportFilter{Type: &reportType})
	if err != nil {
		return nil, fmt.Errorf("snapshotting shared reports: %w", err)
	}

	byDay := make(map[string][]string, len(reports))
	for _, r := range reports {
		byDay[r.Day()] = append(byDay[r.Day()], format.Format(r))
	}
	return byDay, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
