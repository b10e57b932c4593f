// Package reporting is the façade the UI layer and the CLI drive: it
// owns the entry flow, the publish transition, evaluation, and the
// shared-document export.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katapios/lazybones/internal/channel"
	"github.com/katapios/lazybones/internal/format"
	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/sharedoc"
	"github.com/katapios/lazybones/internal/store"
)

var (
	// ErrNoChannel is returned by publish when no messaging channel is
	// configured.
	ErrNoChannel = errors.New("no messaging channel configured")

	// ErrAlreadyPublished guards the one-way publish transition.
	ErrAlreadyPublished = errors.New("report already published")

	// ErrAlreadyEvaluated guards the one-way evaluation transition.
	ErrAlreadyEvaluated = errors.New("report already evaluated")
)

// Service exposes the report lifecycle to collaborators.
type Service struct {
	store       store.Store
	ch          channel.Channel
	doc         sharedoc.DocumentStore
	allowReeval bool
	log         *logrus.Logger
}

// NewService creates the reporting façade. ch may be nil when no
// channel is configured; publish then fails with ErrNoChannel.
func NewService(
	s store.Store,
	ch channel.Channel,
	doc sharedoc.DocumentStore,
	allowReeval bool,
	logger *logrus.Logger,
) *Service {
	return &Service{
		store:       s,
		ch:          ch,
		doc:         doc,
		allowReeval: allowReeval,
		log:         logger,
	}
}

// SaveReport persists an internally authored report. Items are trimmed
// and empty ones dropped; a report must keep at least one item.
func (s *Service) SaveReport(ctx context.Context, r model.Report) error {
	if r.Type == "" {
		r.Type = model.ReportTypeRegular
	}
	if !r.Type.Internal() {
		return fmt.Errorf("type %s is ingested, not authored", r.Type)
	}
	if r.Date.IsZero() {
		r.Date = time.Now()
	}

	r.GoodItems = cleanItems(r.GoodItems)
	r.BadItems = cleanItems(r.BadItems)
	if len(r.GoodItems) == 0 && len(r.BadItems) == 0 {
		return fmt.Errorf("report needs at least one item")
	}

	return s.store.SaveReport(ctx, r)
}

// UpdateReport re-applies the save rule; see store.Store.UpdateReport.
func (s *Service) UpdateReport(ctx context.Context, r model.Report) error {
	return s.SaveReport(ctx, r)
}

// FetchReports returns all reports, or only those of the given day.
func (s *Service) FetchReports(ctx context.Context, day *time.Time) ([]model.Report, error) {
	filter := store.ReportFilter{}
	if day != nil {
		d := day.Format(model.DayLayout)
		filter.Day = &d
	}
	return s.store.GetReports(ctx, filter)
}

// DeleteReport removes a report by exact id.
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	return s.store.DeleteReport(ctx, id)
}

// ClearAll discards the whole report collection.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.store.ClearReports(ctx)
}

// PublishReport renders the report, delivers it to the channel, and
// only then flips the published flag: a failed delivery leaves the
// report unpublished and retryable.
func (s *Service) PublishReport(ctx context.Context, id string) error {
	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Published {
		return ErrAlreadyPublished
	}
	if s.ch == nil {
		return ErrNoChannel
	}

	if err := s.ch.Publish(ctx, format.Format(*r)); err != nil {
		return fmt.Errorf("delivering report %s: %w", id, err)
	}
	if err := s.store.MarkPublished(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"report": id,
		"day":    r.Day(),
	}).Info("report published")
	return nil
}

// EvaluateReport records the positional completion check of a custom
// report. Results must line up one-to-one with the good items.
func (s *Service) EvaluateReport(ctx context.Context, id string, results []bool) error {
	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Type != model.ReportTypeCustom {
		return fmt.Errorf("only custom reports are evaluated, %s is %s", id, r.Type)
	}
	if r.Evaluation != nil && r.Evaluation.Evaluated && !s.allowReeval {
		return ErrAlreadyEvaluated
	}
	if len(results) != len(r.GoodItems) {
		return fmt.Errorf(
			"evaluation has %d results for %d items",
			len(results), len(r.GoodItems),
		)
	}

	return s.store.SetEvaluation(ctx, id, model.Evaluation{
		Evaluated: true,
		Results:   results,
	})
}

// AddVoiceNote attaches a voice note to a report.
func (s *Service) AddVoiceNote(ctx context.Context, n model.VoiceNote) error {
	return s.store.AddVoiceNote(ctx, n)
}

// VoiceNotes returns a report's voice notes in attachment order.
func (s *Service) VoiceNotes(ctx context.Context, reportID string) ([]model.VoiceNote, error) {
	return s.store.GetVoiceNotes(ctx, reportID)
}

// DetachVoiceNote releases a voice note and its file from its report.
func (s *Service) DetachVoiceNote(ctx context.Context, id string) error {
	return s.store.DetachVoiceNote(ctx, id)
}

// ExportShared renders every internal report with provenance and
// replaces the shared document with the result (last-writer-wins).
func (s *Service) ExportShared(ctx context.Context) error {
	reports, err := s.store.GetReports(ctx, store.ReportFilter{
		Types: []model.ReportType{
			model.ReportTypeRegular,
			model.ReportTypeCustom,
		},
	})
	if err != nil {
		return err
	}

	text := format.FormatAll(reports, true)
	if err := s.doc.Write(ctx, text); err != nil {
		return fmt.Errorf("exporting shared document: %w", err)
	}

	s.log.WithField("reports", len(reports)).Info("shared document exported")
	return nil
}

// cleanItems trims entries and drops the ones left empty, preserving
// order.
func cleanItems(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}
