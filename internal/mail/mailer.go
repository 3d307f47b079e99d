// Package mail implements the outbound mail collaborator.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Message is a single outbound mail.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a message or fails. The forgot-password and
// contact-admin flows await delivery before responding, so a slow
// transport directly delays those responses.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail over SMTP. The sender identity comes from
// configuration, never from code.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates an SMTP-backed Sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers msg, dialing a fresh connection per message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}
