package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/katapios/lazybones/internal/channel"
)

// Adapter implements channel.Channel on top of the Telegram Bot API.
// The update id serves as the ingestion cursor; messages from other
// chats than the configured one are dropped.
type Adapter struct {
	client *Client
	chatID int64
}

// NewAdapter creates a telegram channel adapter for one chat.
func NewAdapter(client *Client, chatID int64) *Adapter {
	return &Adapter{client: client, chatID: chatID}
}

// Type returns the channel type identifier for Telegram.
func (a *Adapter) Type() channel.ChannelType {
	return channel.TypeTelegram
}

// ValidateConnection verifies the bot token via getMe and returns the
// bot's handle.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	me, err := a.client.GetMe(ctx)
	if err != nil {
		return "", fmt.Errorf("validating telegram connection: %w", err)
	}
	return "@" + me.Username, nil
}

// FetchMessages pulls updates with update_id > sinceCursor and maps the
// qualifying ones to channel messages, ascending by cursor.
func (a *Adapter) FetchMessages(
	ctx context.Context,
	sinceCursor int64,
) ([]channel.Message, error) {
	offset := int64(0)
	if sinceCursor > 0 {
		offset = sinceCursor + 1
	}

	updates, err := a.client.GetUpdates(ctx, offset, 100)
	if err != nil {
		return nil, fmt.Errorf("fetching telegram updates: %w", err)
	}

	messages := make([]channel.Message, 0, len(updates))
	for _, u := range updates {
		if u.UpdateID <= sinceCursor {
			continue
		}
		m := u.Message
		if m == nil || m.Chat.ID != a.chatID {
			continue
		}

		text := m.Text
		if text == "" {
			text = m.Caption
		}

		msg := channel.Message{
			ID:     strconv.FormatInt(m.MessageID, 10),
			Cursor: u.UpdateID,
			Text:   text,
			SentAt: time.Unix(m.Date, 0),
		}
		if m.From != nil {
			msg.AuthorID = m.From.ID
			msg.AuthorName = displayName(m.From)
			if m.From.Username != "" {
				msg.AuthorHandle = "@" + m.From.Username
			}
		}
		if m.Voice != nil {
			url, err := a.client.FileURL(ctx, m.Voice.FileID)
			if err == nil {
				msg.VoiceURLs = append(msg.VoiceURLs, url)
			}
			// A failed file resolve costs the attachment, not the message.
		}

		messages = append(messages, msg)
	}

	return messages, nil
}

// Publish sends the rendered report text to the configured chat.
func (a *Adapter) Publish(ctx context.Context, text string) error {
	if err := a.client.SendMessage(ctx, a.chatID, text); err != nil {
		return fmt.Errorf("publishing to telegram chat %d: %w", a.chatID, err)
	}
	return nil
}

// displayName joins the user's first and last name.
func displayName(u *User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
