// Package mail delivers notify.Message values over SMTP, or to the log when
// no SMTP host is configured.
package mail

import (
	"context"
	"fmt"

	"github.com/dvloznov/moneyflow/internal/config"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends through an authenticated SMTP relay with STARTTLS.
type SMTPMailer struct {
	cfg config.SMTP
}

// NewSMTPMailer validates cfg and returns a mailer. Connections are opened
// per send.
func NewSMTPMailer(cfg config.SMTP) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("NewSMTPMailer: host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("NewSMTPMailer: sender address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = notify.DefaultSendTimeout
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send implements notify.Mailer. The context deadline bounds dialing and
// the SMTP conversation.
func (m *SMTPMailer) Send(ctx context.Context, msg notify.Message) error {
	out, err := buildMsg(m.cfg.From, msg)
	if err != nil {
		return fmt.Errorf("Send: %w", err)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTimeout(m.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("Send: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("Send: deliver to %s: %w", msg.To, err)
	}
	return nil
}

func buildMsg(from string, msg notify.Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return out, nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Bool("html", msg.HTML != "").
		Msg(msg.Text)
	return nil
}

// New picks the SMTP mailer when a host is configured and the log mailer
// otherwise.
func New(cfg config.SMTP, log zerolog.Logger) (notify.Mailer, error) {
	if cfg.Host == "" {
		log.Warn().Msg("SMTP_HOST not set - emails will be logged, not sent")
		return NewLogMailer(log), nil
	}
	return NewSMTPMailer(cfg)
}

var (
	_ notify.Mailer = (*SMTPMailer)(nil)
	_ notify.Mailer = (*LogMailer)(nil)
)
