package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/katapios/lazybones/internal/model"
)

// AddVoiceNote attaches a voice note to its report. Generates a UUID if
// the note's ID is empty and defaults sort_order to max+1 within the
// report.
func (s *SQLiteStore) AddVoiceNote(ctx context.Context, n model.VoiceNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ReportID == "" {
		return &StoreError{Op: "adding voice note", Err: fmt.Errorf("report id must not be empty")}
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if n.SortOrder == 0 {
		var maxOrder int
		err := s.db.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM voice_notes WHERE report_id = ?",
			n.ReportID,
		)
		if err != nil {
			return &StoreError{Op: "adding voice note", Err: err}
		}
		n.SortOrder = maxOrder + 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voice_notes (id, report_id, path, duration_sec, source_url, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ReportID, n.Path, n.DurationSec, n.SourceURL, n.SortOrder, n.CreatedAt,
	)
	if err != nil {
		return &StoreError{Op: "adding voice note", Err: err}
	}
	return nil
}

// GetVoiceNotes retrieves the voice notes of a report in attachment order.
func (s *SQLiteStore) GetVoiceNotes(
	ctx context.Context,
	reportID string,
) ([]model.VoiceNote, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, report_id, path, duration_sec, source_url, sort_order, created_at
		 FROM voice_notes WHERE report_id = ? ORDER BY sort_order`,
		reportID,
	)
	if err != nil {
		return nil, &StoreError{Op: "querying voice notes", Err: err}
	}
	defer rows.Close()

	notes, err := collectVoiceNotes(rows)
	if err != nil {
		return nil, &StoreError{Op: "querying voice notes", Err: err}
	}
	return notes, nil
}

// DetachVoiceNote removes the note record, releasing ownership of the
// underlying audio file. The file itself is the caller's to dispose of.
func (s *SQLiteStore) DetachVoiceNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM voice_notes WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "detaching voice note", Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &StoreError{Op: "detaching voice note", Err: fmt.Errorf("voice note %s not found", id)}
	}
	return nil
}

// voiceNotesTx loads a report's voice notes inside a transaction.
func voiceNotesTx(ctx context.Context, tx *sqlx.Tx, reportID string) ([]model.VoiceNote, error) {
	rows, err := tx.QueryxContext(ctx,
		`SELECT id, report_id, path, duration_sec, source_url, sort_order, created_at
		 FROM voice_notes WHERE report_id = ? ORDER BY sort_order`,
		reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying voice notes for %s: %w", reportID, err)
	}
	defer rows.Close()

	return collectVoiceNotes(rows)
}

func collectVoiceNotes(rows *sqlx.Rows) ([]model.VoiceNote, error) {
	var notes []model.VoiceNote
	for rows.Next() {
		var n model.VoiceNote
		err := rows.Scan(
			&n.ID, &n.ReportID, &n.Path, &n.DurationSec,
			&n.SourceURL, &n.SortOrder, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning voice note row: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
