// Package channel abstracts the external messaging channel a report is
// published to and ingested from. Each integration lives in its own
// subpackage behind the Channel interface.
package channel

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ChannelType identifies the kind of messaging-channel integration.
type ChannelType string

const (
	TypeTelegram ChannelType = "telegram"
	TypeMail     ChannelType = "mail"
)

// AuthError indicates that authentication has failed or expired for a
// channel.
type AuthError struct {
	Channel ChannelType
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Channel, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// UnavailableError indicates the channel could not be reached. The
// caller may retry later; no ingestion cursor advances on it.
type UnavailableError struct {
	Channel ChannelType
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("channel %s unavailable: %v", e.Channel, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err (or any error in its chain) is an
// UnavailableError.
func IsUnavailable(err error) bool {
	var unavailErr *UnavailableError
	return errors.As(err, &unavailErr)
}

// Message is one inbound message from the channel.
type Message struct {
	// ID is the message's identifier within the channel; it is the
	// dedup key for externally ingested reports.
	ID string

	// Cursor is the channel's monotonically increasing watermark for
	// this message (telegram update id, IMAP UID).
	Cursor int64

	AuthorName   string
	AuthorHandle string
	AuthorID     int64

	// Text is the raw message body.
	Text string

	// VoiceURLs point at voice attachments on the channel side.
	VoiceURLs []string

	SentAt time.Time
}

// Channel is the contract every messaging-channel integration implements.
type Channel interface {
	// Type returns the channel type identifier.
	Type() ChannelType

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable identity string on success.
	ValidateConnection(ctx context.Context) (string, error)

	// FetchMessages retrieves messages with Cursor strictly greater
	// than sinceCursor, in ascending cursor order.
	FetchMessages(ctx context.Context, sinceCursor int64) ([]Message, error)

	// Publish delivers a report's rendered text to the channel.
	Publish(ctx context.Context, text string) error
}
