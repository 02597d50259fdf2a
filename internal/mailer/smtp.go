// Package mailer delivers notification emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// SMTPMailer sends each email in its own SMTP session.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds a go-mail client from cfg.  SMTP auth is enabled only
// when a username is configured.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLS)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: c, from: cfg.From}, nil
}

func tlsPolicy(s string) mail.TLSPolicy {
	switch s {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	}
	return mail.TLSOpportunistic
}

// Send implements queue.Mailer.
func (m *SMTPMailer) Send(ctx context.Context, email model.Email) error {
	msg, err := buildMessage(m.from, email)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}

// buildMessage prefers the HTML body and attaches Text as the plain
// alternative when both are present.
func buildMessage(from string, email model.Email) (*mail.Msg, error) {
	if email.HTML == "" && email.Text == "" {
		return nil, errors.New("email has no body")
	}
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from %q: %w", from, err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("to %q: %w", email.To, err)
	}
	msg.Subject(email.Subject)
	switch {
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
		if email.Text != "" {
			msg.AddAlternativeString(mail.TypeTextPlain, email.Text)
		}
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}
	return msg, nil
}
