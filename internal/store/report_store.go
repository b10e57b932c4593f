package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/katapios/lazybones/internal/model"
)

// reportColumns is the canonical column list for report scans.
const reportColumns = `id, day, type, good_items, bad_items, published,
	evaluated, eval_results, author_name, author_handle, author_id,
	source_message_id, source_text, voice_urls, created_at, updated_at`

// SaveReport persists r, applying the one-slot-per-day overwrite rule
// for internal reports. The replaced report's voice notes are carried
// over to r inside the same transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, r model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(ctx, r); err != nil {
		return &StoreError{Op: "saving report", Err: err}
	}
	return nil
}

// UpdateReport has the same effect as SaveReport. Re-applying the
// day/type rule lets an update silently absorb a stale duplicate.
func (s *SQLiteStore) UpdateReport(ctx context.Context, r model.Report) error {
	return s.SaveReport(ctx, r)
}

func (s *SQLiteStore) saveLocked(ctx context.Context, r model.Report) error {
	if r.Type == "" {
		r.Type = model.ReportTypeRegular
	}
	if r.Date.IsZero() {
		return fmt.Errorf("report date must be set")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	goodJSON, err := json.Marshal(emptyIfNil(r.GoodItems))
	if err != nil {
		return fmt.Errorf("marshaling good items: %w", err)
	}
	badJSON, err := json.Marshal(emptyIfNil(r.BadItems))
	if err != nil {
		return fmt.Errorf("marshaling bad items: %w", err)
	}
	urlsJSON, err := json.Marshal(emptyIfNil(r.VoiceURLs))
	if err != nil {
		return fmt.Errorf("marshaling voice urls: %w", err)
	}

	evaluated := false
	results := []bool{}
	if r.Evaluation != nil {
		evaluated = r.Evaluation.Evaluated
		results = r.Evaluation.Results
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling evaluation results: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// A same-id re-save replaces the conflicting row, and the delete
	// behind INSERT OR REPLACE cascades into voice_notes. Capture the
	// report's own notes before the replace.
	carried, err := voiceNotesTx(ctx, tx, r.ID)
	if err != nil {
		return err
	}

	// Overwrite semantics apply to internal reports only: external and
	// shared history is append-only.
	if r.Type.Internal() {
		var oldID string
		err := tx.GetContext(ctx, &oldID,
			"SELECT id FROM reports WHERE day = ? AND type = ? AND id != ?",
			r.Day(), string(r.Type), r.ID,
		)
		switch {
		case err == nil:
			// Capture the displaced slot's voice notes before the
			// cascade delete takes them.
			displaced, err := voiceNotesTx(ctx, tx, oldID)
			if err != nil {
				return err
			}
			carried = append(carried, displaced...)
			if _, err := tx.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", oldID); err != nil {
				return fmt.Errorf("replacing report %s: %w", oldID, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			// Empty slot.
		default:
			return fmt.Errorf("checking day/type slot: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (
			id, day, type, good_items, bad_items, published,
			evaluated, eval_results, author_name, author_handle, author_id,
			source_message_id, source_text, voice_urls, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Day(), string(r.Type), string(goodJSON), string(badJSON),
		boolToInt(r.Published), boolToInt(evaluated), string(resultsJSON),
		r.AuthorName, r.AuthorHandle, r.AuthorID,
		r.SourceMessageID, r.SourceText, string(urlsJSON),
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting report %s: %w", r.ID, err)
	}

	for _, n := range carried {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO voice_notes (id, report_id, path, duration_sec, source_url, sort_order, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, r.ID, n.Path, n.DurationSec, n.SourceURL, n.SortOrder, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("carrying voice note %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// GetReports retrieves reports matching the filter, in insertion order.
func (s *SQLiteStore) GetReports(
	ctx context.Context,
	filter ReportFilter,
) ([]model.Report, error) {
	var conditions []string
	var args []interface{}

	if filter.Day != nil {
		conditions = append(conditions, "day = ?")
		args = append(args, *filter.Day)
	}
	if filter.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions,
			"type IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := "SELECT " + reportColumns + " FROM reports"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "querying reports", Err: err}
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, &StoreError{Op: "querying reports", Err: err}
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "querying reports", Err: err}
	}

	return reports, nil
}

// GetReportByID retrieves a single report by id, including its voice notes.
func (s *SQLiteStore) GetReportByID(
	ctx context.Context,
	id string,
) (*model.Report, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id)
	if err != nil {
		return nil, &StoreError{Op: "getting report", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &StoreError{Op: "getting report", Err: err}
		}
		return nil, ErrReportNotFound
	}

	r, err := scanReport(rows)
	if err != nil {
		return nil, &StoreError{Op: "getting report", Err: err}
	}

	notes, err := s.GetVoiceNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	r.VoiceNotes = notes

	return &r, nil
}

// DeleteReport removes a report by exact id match. Voice notes cascade.
func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "deleting report", Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ClearReports discards all reports and their voice notes. App state
// (status, cursor) is kept.
func (s *SQLiteStore) ClearReports(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM reports"); err != nil {
		return &StoreError{Op: "clearing reports", Err: err}
	}
	return nil
}

// MarkPublished flips the report's published flag. The transition is
// one-way; marking an already published report is a no-op.
func (s *SQLiteStore) MarkPublished(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"UPDATE reports SET published = 1, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return &StoreError{Op: "marking report published", Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrReportNotFound
	}
	return nil
}

// SetEvaluation stores the completion check of a custom report.
func (s *SQLiteStore) SetEvaluation(
	ctx context.Context,
	id string,
	eval model.Evaluation,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resultsJSON, err := json.Marshal(emptyIfNilBool(eval.Results))
	if err != nil {
		return &StoreError{Op: "setting evaluation", Err: err}
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE reports SET evaluated = ?, eval_results = ?, updated_at = ? WHERE id = ?",
		boolToInt(eval.Evaluated), string(resultsJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return &StoreError{Op: "setting evaluation", Err: err}
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrReportNotFound
	}
	return nil
}

// scanReport scans a report row from a sqlx.Rows result set.
func scanReport(rows *sqlx.Rows) (model.Report, error) {
	var (
		r           model.Report
		day         string
		reportType  string
		goodJSON    string
		badJSON     string
		published   int
		evaluated   int
		resultsJSON string
		urlsJSON    string
	)

	err := rows.Scan(
		&r.ID, &day, &reportType, &goodJSON, &badJSON, &published,
		&evaluated, &resultsJSON, &r.AuthorName, &r.AuthorHandle, &r.AuthorID,
		&r.SourceMessageID, &r.SourceText, &urlsJSON,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return model.Report{}, fmt.Errorf("scanning report row: %w", err)
	}

	r.Type = model.ReportType(reportType)
	r.Published = published != 0

	r.Date, err = time.ParseInLocation(model.DayLayout, day, time.Local)
	if err != nil {
		return model.Report{}, fmt.Errorf("parsing report day %q: %w", day, err)
	}

	if err := json.Unmarshal([]byte(goodJSON), &r.GoodItems); err != nil {
		return model.Report{}, fmt.Errorf("unmarshaling good items: %w", err)
	}
	if err := json.Unmarshal([]byte(badJSON), &r.BadItems); err != nil {
		return model.Report{}, fmt.Errorf("unmarshaling bad items: %w", err)
	}
	if err := json.Unmarshal([]byte(urlsJSON), &r.VoiceURLs); err != nil {
		return model.Report{}, fmt.Errorf("unmarshaling voice urls: %w", err)
	}

	if evaluated != 0 {
		var results []bool
		if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
			return model.Report{}, fmt.Errorf("unmarshaling evaluation results: %w", err)
		}
		r.Evaluation = &model.Evaluation{Evaluated: true, Results: results}
	}

	return r, nil
}

// emptyIfNil normalizes a nil slice so it marshals as [] rather than null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilBool(s []bool) []bool {
	if s == nil {
		return []bool{}
	}
	return s
}
