package mail

import "time"

// FetchedMessage holds the envelope and text body of one inbox message.
type FetchedMessage struct {
	UID       uint32
	MessageID string
	Subject   string
	FromName  string
	FromAddr  string
	Date      time.Time
	TextBody  string
}

// SMTPConfig holds the SMTP server settings for publishing reports.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}
