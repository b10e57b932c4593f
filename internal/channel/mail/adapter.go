package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/katapios/lazybones/internal/channel"
)

// subject is the fixed subject line of published report mails. Inbound
// messages are not filtered by subject; the parser decides what counts.
const subject = "Daily report"

// Adapter implements channel.Channel for self-addressed report mail.
// IMAP UIDs are monotonically increasing within a mailbox, so the UID
// doubles as the ingestion cursor.
type Adapter struct {
	imapClient *IMAPClient
	smtpConfig SMTPConfig
	username   string
}

// NewAdapter creates a mail channel adapter.
func NewAdapter(
	imapHost, imapPort string,
	smtpHost, smtpPort string,
	username, password string,
	useTLS bool,
) *Adapter {
	return &Adapter{
		imapClient: NewIMAPClient(
			imapHost, imapPort, username, password, useTLS,
		),
		smtpConfig: SMTPConfig{
			Host:     smtpHost,
			Port:     smtpPort,
			Username: username,
			Password: password,
			TLS:      useTLS,
		},
		username: username,
	}
}

// Type returns the channel type identifier for mail.
func (a *Adapter) Type() channel.ChannelType {
	return channel.TypeMail
}

// ValidateConnection verifies IMAP credentials by connecting and
// authenticating. Returns the mailbox user on success.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	client, err := a.imapClient.Connect(ctx)
	if err != nil {
		return "", fmt.Errorf("validating mail connection: %w", err)
	}
	defer func() { _ = client.Logout().Wait() }()

	return a.username, nil
}

// FetchMessages retrieves inbox messages with UID > sinceCursor and
// maps them to channel messages.
func (a *Adapter) FetchMessages(
	ctx context.Context,
	sinceCursor int64,
) ([]channel.Message, error) {
	fetched, err := a.imapClient.FetchSince(ctx, uint32(sinceCursor))
	if err != nil {
		return nil, fmt.Errorf("fetching mail messages: %w", err)
	}

	messages := make([]channel.Message, 0, len(fetched))
	for _, fm := range fetched {
		id := fm.MessageID
		if id == "" {
			id = strconv.FormatUint(uint64(fm.UID), 10)
		}
		messages = append(messages, channel.Message{
			ID:           id,
			Cursor:       int64(fm.UID),
			AuthorName:   fm.FromName,
			AuthorHandle: fm.FromAddr,
			Text:         fm.TextBody,
			SentAt:       fm.Date,
		})
	}

	return messages, nil
}

// Publish mails the rendered report text to the configured mailbox.
func (a *Adapter) Publish(ctx context.Context, text string) error {
	if err := send(a.smtpConfig, a.username, subject, text); err != nil {
		return fmt.Errorf("publishing report mail: %w", err)
	}
	return nil
}

// send composes a plain-text mail and delivers it over SMTP.
func send(cfg SMTPConfig, to, subject, body string) error {
	from := cfg.Username

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := cfg.Host + ":" + cfg.Port

	if cfg.TLS {
		return sendWithTLS(addr, cfg, from, to, msg.String())
	}
	return sendWithStartTLS(addr, cfg, from, to, msg.String())
}

// sendWithTLS sends a mail over an implicit TLS connection.
func sendWithTLS(addr string, cfg SMTPConfig, from, to, body string) error {
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return &channel.UnavailableError{
			Channel: channel.TypeMail,
			Err:     fmt.Errorf("TLS dial to %s: %w", addr, err),
		}
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return &channel.AuthError{
			Channel: channel.TypeMail,
			Message: fmt.Sprintf("SMTP auth failed for %s: %v", cfg.Username, err),
		}
	}

	return sendViaClient(client, from, to, body)
}

// sendWithStartTLS sends a mail using STARTTLS.
func sendWithStartTLS(addr string, cfg SMTPConfig, from, to, body string) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return &channel.UnavailableError{
			Channel: channel.TypeMail,
			Err:     fmt.Errorf("dial to %s: %w", addr, err),
		}
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return &channel.AuthError{
			Channel: channel.TypeMail,
			Message: fmt.Sprintf("SMTP auth failed for %s: %v", cfg.Username, err),
		}
	}

	return sendViaClient(client, from, to, body)
}

// sendViaClient sends a message using an already-authenticated SMTP client.
func sendViaClient(client *smtp.Client, from, to, body string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}
	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing mail body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing mail body: %w", err)
	}

	return client.Quit()
}
