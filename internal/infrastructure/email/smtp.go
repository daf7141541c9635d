package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
	Insecure bool
}

// SMTPMailer delivers verification and reset emails directly over SMTP.
type SMTPMailer struct {
	lg  zerolog.Logger
	cfg SMTPConfig

	// dial is swapped in tests
	dial func(ctx context.Context, m *mail.Msg) error
}

func NewSMTPMailer(cfg SMTPConfig, lg zerolog.Logger) *SMTPMailer {
	s := &SMTPMailer{
		lg:  lg.With().Str("component", "smtp_mailer").Logger(),
		cfg: cfg,
	}
	s.dial = s.dialAndSend
	return s
}

func (s *SMTPMailer) SendVerificationEmail(ctx context.Context, msg auth.VerificationEmail) error {
	data := templateData{Name: msg.Name, URL: VerifyEmailURL(msg.Origin, msg.Token, msg.Email)}

	m, err := s.newMsg(msg.Email, "Email Confirmation")
	if err != nil {
		return err
	}
	if err := m.SetBodyTextTemplate(verifyText, data); err != nil {
		return err
	}
	if err := m.AddAlternativeHTMLTemplate(verifyHTML, data); err != nil {
		return err
	}
	return s.send(ctx, m, msg.Email)
}

func (s *SMTPMailer) SendResetPasswordEmail(ctx context.Context, msg auth.ResetPasswordEmail) error {
	data := templateData{Name: msg.Name, URL: ResetPasswordURL(msg.Origin, string(msg.Token), msg.Email)}

	m, err := s.newMsg(msg.Email, "Reset Password")
	if err != nil {
		return err
	}
	if err := m.SetBodyTextTemplate(resetText, data); err != nil {
		return err
	}
	if err := m.AddAlternativeHTMLTemplate(resetHTML, data); err != nil {
		return err
	}
	return s.send(ctx, m, msg.Email)
}

func (s *SMTPMailer) newMsg(to, subject string) (*mail.Msg, error) {
	m := mail.NewMsg()

	var err error
	if s.cfg.FromName != "" {
		err = m.FromFormat(s.cfg.FromName, s.cfg.From)
	} else {
		err = m.From(s.cfg.From)
	}
	if err != nil {
		return nil, PermanentError{msg: "invalid from address: " + err.Error()}
	}
	if err := m.To(to); err != nil {
		return nil, PermanentError{msg: "invalid to address: " + err.Error()}
	}
	m.Subject(subject)
	return m, nil
}

func (s *SMTPMailer) send(ctx context.Context, m *mail.Msg, to string) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if err := s.dial(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("to", to).Msg("smtp send failed")

		msg := err.Error()
		if containsAny(msg, "535", "5.7.8", "authentication") {
			return PermanentError{msg: "smtp auth failed: " + msg}
		}
		return TemporaryError{msg: "smtp transient failure: " + msg}
	}

	s.lg.Info().Str("to", to).Msg("smtp send ok")
	return nil
}

func (s *SMTPMailer) dialAndSend(ctx context.Context, m *mail.Msg) error {
	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Username != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(s.cfg.Username), mail.WithPassword(s.cfg.Password))
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return PermanentError{msg: "smtp client init failed: " + err.Error()}
	}
	return c.DialAndSendWithContext(ctx, m)
}

// PermanentError will not succeed on retry (bad address, rejected credentials).
type PermanentError struct{ msg string }

func (e PermanentError) Error() string { return e.msg }

// TemporaryError may succeed on retry.
type TemporaryError struct{ msg string }

func (e TemporaryError) Error() string { return e.msg }

func containsAny(s string, subs ...string) bool {
	for _, x := range subs {
		if x != "" && strings.Contains(s, x) {
			return true
		}
	}
	return false
}
