// internal/reminder/smtp.go
//
// SMTP-backed Mailer. Configured entirely from the environment; when no
// SMTP host is set the server falls back to a no-op mailer that logs what
// it would have sent, so local runs stay bootable.

package reminder

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// SMTP sends reminders through a real mail relay.
type SMTP struct {
	client *mail.Client
	from   string
}

var _ Mailer = (*SMTP)(nil)

// NewSMTPFromEnv builds an SMTP mailer from SMTP_HOST, SMTP_PORT,
// SMTP_USER, SMTP_PASS, and MAIL_FROM. Returns (nil, nil) when SMTP_HOST
// is unset.
func NewSMTPFromEnv() (*SMTP, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, nil
	}
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	opts := []mail.Option{mail.WithPort(port)}
	if user := os.Getenv("SMTP_USER"); user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(os.Getenv("SMTP_PASS")),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, err
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@concentration.local"
	}
	return &SMTP{client: client, from: from}, nil
}

func (s *SMTP) Send(to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return s.client.DialAndSend(msg)
}

// LogMailer is the no-SMTP fallback: it records the reminder in the log
// instead of delivering it.
type LogMailer struct{}

var _ Mailer = LogMailer{}

func (LogMailer) Send(to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("mail (dry run)")
	return nil
}
