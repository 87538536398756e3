package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/seatwise/reserver/internal/logging"
)

type Message struct {
	Recipients []string
	Subject    string
	Body       string
}

// Mailer delivers operational notification emails. Implementations
// must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through a plain SMTP relay. Auth is optional and
// only used when a username is configured.
type SMTPMailer struct {
	addr     string
	from     string
	username string
	password string
}

func NewSMTP(addr, from, username, password string) *SMTPMailer {
	return &SMTPMailer{
		addr:     addr,
		from:     from,
		username: username,
		password: password,
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return nil
	}

	var auth smtp.Auth
	if m.username != "" {
		host := m.addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}

	payload := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from,
		strings.Join(msg.Recipients, ", "),
		msg.Subject,
		msg.Body,
	)

	return smtp.SendMail(m.addr, auth, m.from, msg.Recipients, []byte(payload))
}

// LogMailer is the fallback when no SMTP relay is configured: it
// writes the would-be message to the application log so local
// environments still show what fired.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logging.Info.Printf(
		"mail (no SMTP configured) to=%s subject=%q",
		strings.Join(msg.Recipients, ","),
		msg.Subject,
	)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = LogMailer{}
)
