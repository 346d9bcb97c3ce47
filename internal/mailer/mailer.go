// Package mailer delivers notification email over SMTP.
package mailer

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Mailer sends a plain-text message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

type smtpMailer struct {
	host string
	port int
	user string
	pass string
	from string
	to   string
}

// NewSMTP builds a Mailer backed by the given SMTP account.
func NewSMTP(host string, port int, user, pass, from, to string) Mailer {
	return &smtpMailer{host: host, port: port, user: user, pass: pass, from: from, to: to}
}

func (m *smtpMailer) Send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(m.port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.user),
			gomail.WithPassword(m.pass),
		)
	}

	client, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
