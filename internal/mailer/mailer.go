// Package mailer delivers password reset links.
package mailer

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers a reset link to an account holder.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	from   string
	dialer dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := resetMessage(s.from, to, name, link)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("to", to).Wrap(err)
	}
	return nil
}

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for a short time and can be used once.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`))

func resetMessage(from, to, name, link string) (*gomail.Message, error) {
	var body strings.Builder
	if err := resetTemplate.Execute(&body, struct{ Name, Link string }{name, link}); err != nil {
		return nil, oops.Code("MAIL_RENDER_FAILED").Wrap(err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your password")
	m.SetBody("text/plain", fmt.Sprintf("Hi %s,\n\nReset your password: %s\n", name, link))
	m.AddAlternative("text/html", body.String())
	return m, nil
}

// LogSender stands in when no SMTP host is configured. The link carries the
// plaintext token, so only the recipient is logged.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendPasswordReset(_ context.Context, to, _, _ string) error {
	s.log.WithField("to", to).Info("smtp not configured, password reset mail not sent")
	return nil
}
