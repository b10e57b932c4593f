package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	"github.com/katapios/lazybones/internal/channel"
)

// IMAPClient wraps go-imap v2 for connecting to and querying the inbox
// that receives mailed-in reports.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password string, tls bool,
) *IMAPClient {
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout on the returned client.
func (c *IMAPClient) Connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, &channel.UnavailableError{
			Channel: channel.TypeMail,
			Err:     fmt.Errorf("connecting to IMAP %s: %w", addr, err),
		}
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &channel.AuthError{
			Channel: channel.TypeMail,
			Message: fmt.Sprintf(
				"authentication failed for %s: %v", c.username, err,
			),
		}
	}

	return client, nil
}

// FetchSince connects, selects INBOX, and returns all messages with
// UID strictly greater than sinceUID, including their plain-text body,
// in ascending UID order.
func (c *IMAPClient) FetchSince(
	ctx context.Context, sinceUID uint32,
) ([]FetchedMessage, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	// UID ranges are half-open at the top: sinceUID+1:* catches
	// everything the cursor has not seen.
	var searchSet imap.UIDSet
	searchSet.AddRange(imap.UID(sinceUID+1), 0)

	criteria := &imap.SearchCriteria{
		UID: []imap.UIDSet{searchSet},
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var messages []FetchedMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		fm := messageFromBuffer(buf, bodySection)
		// The cursor moved past sinceUID; drop anything stale the
		// server handed back anyway.
		if fm.UID <= sinceUID {
			continue
		}
		messages = append(messages, fm)
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching messages: %w", err)
	}

	return messages, nil
}

// messageFromBuffer extracts a FetchedMessage from a fetch buffer.
func messageFromBuffer(
	buf *imapclient.FetchMessageBuffer,
	bodySection *imap.FetchItemBodySection,
) FetchedMessage {
	fm := FetchedMessage{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		fm.MessageID = buf.Envelope.MessageID
		fm.Subject = buf.Envelope.Subject
		fm.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			fm.FromName = from.Name
			fm.FromAddr = from.Addr()
		}
	}

	if raw := buf.FindBodySection(bodySection); raw != nil {
		fm.TextBody = extractTextBody(raw)
	}

	return fm
}

// extractTextBody parses a raw RFC 2822 message and returns its
// text/plain part, falling back to the raw bytes when MIME parsing
// fails.
func extractTextBody(raw []byte) string {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") {
			continue
		}
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		return string(body)
	}

	return ""
}
