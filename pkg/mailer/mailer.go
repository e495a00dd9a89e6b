// Package mailer renders notification events into mail messages and sends
// them over SMTP.
package mailer

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"

	"marina-guard/backend/config"
	"marina-guard/backend/pkg/mq"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type layout struct {
	subject  string
	template string
}

var layouts = map[string]layout{
	mq.EventTimesheetSubmitted: {"Timesheet submitted for review", "timesheet_submitted.html"},
	mq.EventTimesheetApproved:  {"Your timesheet was approved", "timesheet_approved.html"},
	mq.EventTimesheetRejected:  {"Your timesheet was rejected", "timesheet_rejected.html"},
	mq.EventIncidentFiled:      {"New incident report", "incident_filed.html"},
	mq.EventAccountCreated:     {"Your marina guard account", "account_created.html"},
}

// ErrUnknownEvent no template for the event type
type ErrUnknownEvent struct{ Type string }

func (e ErrUnknownEvent) Error() string { return "no mail template for event " + e.Type }

// Build renders e into a message from sender
func Build(from string, e mq.Event) (*mail.Msg, error) {
	l, ok := layouts[e.Type]
	if !ok {
		return nil, ErrUnknownEvent{Type: e.Type}
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(e.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(l.subject)
	if err := msg.SetBodyHTMLTemplate(templates.Lookup(l.template), e.Data); err != nil {
		return nil, fmt.Errorf("render %s: %w", l.template, err)
	}
	return msg, nil
}

// Sender SMTP delivery
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTP go-mail client
type SMTP struct {
	client *mail.Client
}

// NewSMTP builds an SSL client with plain auth
func NewSMTP(cfg *config.MailConfig) (*SMTP, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.SMTPPort),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(time.Duration(cfg.DialTimeout)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &SMTP{client: client}, nil
}

// Send dials, sends and closes
func (s *SMTP) Send(ctx context.Context, msg *mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msg)
}

// Close releases the client
func (s *SMTP) Close() error { return s.client.Close() }
