package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/katapios/lazybones/internal/model"
)

// StoreError wraps a persistence-layer failure (encode/decode/write).
// The wrapped operation aborted without partial state change.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err (or any error in its chain) is a
// StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// ErrReportNotFound is returned when an id-addressed operation matches
// no stored report.
var ErrReportNotFound = errors.New("report not found")

// ReportFilter controls filtering for report queries. Results always
// come back in insertion order.
type ReportFilter struct {
	Day   *string            // calendar day in model.DayLayout, or nil (all)
	Type  *model.ReportType  // single type, or nil (all)
	Types []model.ReportType // any of these types (OR logic)
}

// Store defines the persistence interface for reports, their voice
// notes, and the small amount of scalar app state (status triple,
// ingestion cursor).
//
// All mutations are serialized by the implementation; callers never
// need external locking.
type Store interface {
	// === Reports ===

	// SaveReport persists r. When r is internal (regular/custom) and an
	// internal report for the same calendar day and type already
	// exists, that report is replaced wholesale; its voice notes move
	// to r. External and shared reports are always appended.
	SaveReport(ctx context.Context, r model.Report) error

	// UpdateReport has the same effect as SaveReport: the day/type
	// overwrite rule is re-applied, which also absorbs stale duplicates.
	UpdateReport(ctx context.Context, r model.Report) error

	GetReports(ctx context.Context, filter ReportFilter) ([]model.Report, error)
	GetReportByID(ctx context.Context, id string) (*model.Report, error)

	// DeleteReport removes by exact id match only.
	DeleteReport(ctx context.Context, id string) error

	// ClearReports discards every stored report unconditionally.
	ClearReports(ctx context.Context) error

	// MarkPublished flips the one-way published flag.
	MarkPublished(ctx context.Context, id string) error

	// SetEvaluation stores the positional completion check of a custom
	// report.
	SetEvaluation(ctx context.Context, id string, eval model.Evaluation) error

	// === Voice notes ===

	AddVoiceNote(ctx context.Context, n model.VoiceNote) error
	GetVoiceNotes(ctx context.Context, reportID string) ([]model.VoiceNote, error)

	// DetachVoiceNote releases the note (and its file) from its report.
	DetachVoiceNote(ctx context.Context, id string) error

	// === App state ===

	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key string, value string) error
}
