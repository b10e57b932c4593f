// Package status derives the state of today's report slot from
// wall-clock time, store contents, and the force-unlock override.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/katapios/lazybones/internal/model"
	"github.com/katapios/lazybones/internal/store"
)

// Compute is the pure status function. It is total: for any inputs it
// returns a status, and the same inputs always yield the same status.
//
// Evaluation order matters:
//  1. force-unlock reopens today's slot regardless of anything else;
//  2. no report: notStarted inside the window, notCreated outside;
//  3. published report: sent, regardless of window;
//  4. otherwise: inProgress inside the window, notSent outside.
func Compute(
	now time.Time,
	hasReport bool,
	published bool,
	window model.ActiveWindow,
	forceUnlock bool,
) model.Status {
	if forceUnlock {
		return model.StatusNotStarted
	}

	active := window.Contains(now.Hour())

	if !hasReport {
		if active {
			return model.StatusNotStarted
		}
		return model.StatusNotCreated
	}
	if published {
		return model.StatusSent
	}
	if active {
		return model.StatusInProgress
	}
	return model.StatusNotSent
}

// Engine recomputes the stored status on demand. It persists only its
// own output (status, day, override flag) and never mutates reports.
type Engine struct {
	store  store.Store
	window model.ActiveWindow
}

// NewEngine creates a status engine over the given store and active window.
func NewEngine(s store.Store, window model.ActiveWindow) *Engine {
	return &Engine{store: s, window: window}
}

// Refresh recomputes the status for now, applying day-rollover reset
// first: a terminal status (sent/notSent) left over from a previous day
// resets to notStarted and clears the force-unlock override. The result
// is persisted and returned.
func (e *Engine) Refresh(ctx context.Context, now time.Time) (model.Status, error) {
	stored, storedDay, forceUnlock, err := e.load(ctx)
	if err != nil {
		return "", err
	}

	today := now.Format(model.DayLayout)

	// Terminal statuses are day-bound; everything else is already
	// day-relative through the report lookup below.
	if (stored == model.StatusSent || stored == model.StatusNotSent) && storedDay != today {
		forceUnlock = false
	}

	reportType := model.ReportTypeRegular
	reports, err := e.store.GetReports(ctx, store.ReportFilter{
		Day:  &today,
		Type: &reportType,
	})
	if err != nil {
		return "", fmt.Errorf("loading today's report: %w", err)
	}

	hasReport := len(reports) > 0
	published := hasReport && reports[0].Published

	result := Compute(now, hasReport, published, e.window, forceUnlock)

	if err := e.persist(ctx, result, today, forceUnlock); err != nil {
		return "", err
	}
	return result, nil
}

// SetForceUnlock stores the override flag. The next Refresh reflects it.
func (e *Engine) SetForceUnlock(ctx context.Context, on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	if err := e.store.SetState(ctx, store.StateKeyForceUnlock, value); err != nil {
		return fmt.Errorf("storing force-unlock flag: %w", err)
	}
	return nil
}

// Stored returns the last persisted status without recomputing,
// defaulting to notStarted when nothing was ever stored.
func (e *Engine) Stored(ctx context.Context) (model.Status, error) {
	stored, _, _, err := e.load(ctx)
	if err != nil {
		return "", err
	}
	return stored, nil
}

func (e *Engine) load(ctx context.Context) (model.Status, string, bool, error) {
	raw, err := e.store.GetState(ctx, store.StateKeyStatus)
	if err != nil {
		return "", "", false, fmt.Errorf("loading stored status: %w", err)
	}
	stored := model.Status(raw)
	if stored == "" {
		stored = model.StatusNotStarted
	}

	day, err := e.store.GetState(ctx, store.StateKeyStatusDay)
	if err != nil {
		return "", "", false, fmt.Errorf("loading stored status day: %w", err)
	}

	flag, err := e.store.GetState(ctx, store.StateKeyForceUnlock)
	if err != nil {
		return "", "", false, fmt.Errorf("loading force-unlock flag: %w", err)
	}

	return stored, day, flag == "1", nil
}

func (e *Engine) persist(ctx context.Context, st model.Status, day string, forceUnlock bool) error {
	if err := e.store.SetState(ctx, store.StateKeyStatus, string(st)); err != nil {
		return fmt.Errorf("storing status: %w", err)
	}
	if err := e.store.SetState(ctx, store.StateKeyStatusDay, day); err != nil {
		return fmt.Errorf("storing status day: %w", err)
	}
	flag := "0"
	if forceUnlock {
		flag = "1"
	}
	if err := e.store.SetState(ctx, store.StateKeyForceUnlock, flag); err != nil {
		return fmt.Errorf("storing force-unlock flag: %w", err)
	}
	return nil
}
