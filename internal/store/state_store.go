package store

import (
	"context"
	"database/sql"
	"errors"
)

// Well-known app_state keys. The status triple and the external-channel
// cursor are the only scalars the core persists outside the reports
// collection.
const (
	StateKeyStatus      = "status"
	StateKeyStatusDay   = "status_day"
	StateKeyForceUnlock = "force_unlock"
	StateKeyCursor      = "external_cursor"
)

// GetState returns the stored value for key, or "" when the key has
// never been set.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM app_state WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &StoreError{Op: "reading app state", Err: err}
	}
	return value, nil
}

// SetState stores value under key, replacing any previous value.
func (s *SQLiteStore) SetState(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return &StoreError{Op: "writing app state", Err: err}
	}
	return nil
}
