// Package ingest holds the two merge pipelines feeding the report
// store: cursor-based external-channel ingestion and content-deduped
// shared-document import. Both only ever add reports; overwrite
// semantics belong to internal types in the store.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katapios/lazybones/internal/channel"
	"github.com/katapios/lazybones/internal/format"
	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/store"
)

// External ingests reports from one messaging channel.
//
// Delivery model: at-least-once fetch, exactly-once storage. Messages
// are deduplicated against a snapshot of stored source ids taken at
// the start of the pass, and the cursor is persisted only after the
// corresponding report's storage is confirmed, so a crash or a
// cancellation mid-batch re-fetches but never duplicates.
type External struct {
	store store.Store
	ch    channel.Channel
	log   *logrus.Entry
}

// NewExternal creates an external-channel ingestion pipeline.
func NewExternal(s store.Store, ch channel.Channel, logger *logrus.Logger) *External {
	return &External{
		store: s,
		ch:    ch,
		log: logger.WithField(
			"channel", string(ch.Type()),
		),
	}
}

// cursorKey returns the app-state key of a channel's ingestion cursor.
func cursorKey(t channel.ChannelType) string {
	return store.StateKeyCursor + "." + string(t)
}

// Cursor returns the channel's persisted ingestion watermark.
func (e *External) Cursor(ctx context.Context) (int64, error) {
	raw, err := e.store.GetState(ctx, cursorKey(e.ch.Type()))
	if err != nil {
		return 0, fmt.Errorf("reading ingestion cursor: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ingestion cursor %q: %w", raw, err)
	}
	return cursor, nil
}

// Run performs one ingestion pass and returns the number of reports
// added. A fetch failure leaves stored data and the cursor untouched.
func (e *External) Run(ctx context.Context) (int, error) {
	cursor, err := e.Cursor(ctx)
	if err != nil {
		return 0, err
	}

	messages, err := e.ch.FetchMessages(ctx, cursor)
	if err != nil {
		return 0, fmt.Errorf("fetching from channel: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	// Dedup decisions run against a snapshot taken now; the single
	// logical writer makes that safe.
	seen, err := e.storedSourceIDs(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	skipped := 0
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			// Abort is safe: the cursor covers only confirmed storage.
			return added, ctx.Err()
		default:
		}

		if strings.TrimSpace(msg.Text) == "" {
			// Not a report; move the cursor past it.
			if err := e.advance(ctx, msg.Cursor); err != nil {
				return added, err
			}
			continue
		}

		if seen[msg.ID] {
			skipped++
			if err := e.advance(ctx, msg.Cursor); err != nil {
				return added, err
			}
			continue
		}

		r := reportFromMessage(msg)
		if err := e.store.SaveReport(ctx, r); err != nil {
			// Cursor stays behind this message; the next pass retries it.
			return added, fmt.Errorf("storing ingested report: %w", err)
		}
		seen[msg.ID] = true
		added++

		if err := e.advance(ctx, msg.Cursor); err != nil {
			return added, err
		}
	}

	e.log.WithFields(logrus.Fields{
		"added":   added,
		"skipped": skipped,
	}).Info("external ingestion pass complete")

	return added, nil
}

// advance persists the cursor after a message's handling is confirmed.
func (e *External) advance(ctx context.Context, cursor int64) error {
	err := e.store.SetState(ctx, cursorKey(e.ch.Type()), strconv.FormatInt(cursor, 10))
	if err != nil {
		return fmt.Errorf("advancing ingestion cursor: %w", err)
	}
	return nil
}

// storedSourceIDs snapshots the source message ids of all stored
// external reports.
func (e *External) storedSourceIDs(ctx context.Context) (map[string]bool, error) {
	reportType := model.ReportTypeExternal
	existing, err := e.store.GetReports(ctx, store.ReportFilter{Type: &reportType})
	if err != nil {
		return nil, fmt.Errorf("snapshotting stored reports: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.SourceMessageID != "" {
			seen[r.SourceMessageID] = true
		}
	}
	return seen, nil
}

// reportFromMessage maps a channel message to an external report,
// populating provenance. When the text is itself interchange-formatted,
// its sections are recovered; otherwise every non-empty line becomes a
// good item, so nothing the user wrote is lost.
func reportFromMessage(msg channel.Message) model.Report {
	date := msg.SentAt
	if date.IsZero() {
		date = time.Now()
	}

	r := model.Report{
		Date:            date,
		Type:            model.ReportTypeExternal,
		AuthorName:      msg.AuthorName,
		AuthorHandle:    msg.AuthorHandle,
		AuthorID:        msg.AuthorID,
		SourceMessageID: msg.ID,
		SourceText:      msg.Text,
		VoiceURLs:       msg.VoiceURLs,
	}

	if candidates, err := format.Parse(msg.Text); err == nil {
		c := candidates[0]
		r.GoodItems = c.GoodItems
		r.BadItems = c.BadItems
		if !c.Date.IsZero() {
			r.Date = c.Date
		}
		return r
	}

	for _, line := range strings.Split(msg.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			r.GoodItems = append(r.GoodItems, line)
		}
	}
	return r
}
