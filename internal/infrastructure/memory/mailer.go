package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/email"
)

// LogMailer logs links instead of delivering them and keeps what it sent.
// Used for EMAIL_TRANSPORT=log and in tests.
type LogMailer struct {
	log zerolog.Logger

	mu            sync.Mutex
	verifications []auth.VerificationEmail
	resets        []auth.ResetPasswordEmail
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, msg auth.VerificationEmail) error {
	m.mu.Lock()
	m.verifications = append(m.verifications, msg)
	m.mu.Unlock()

	m.log.Info().
		Str("email", msg.Email).
		Str("url", email.VerifyEmailURL(msg.Origin, msg.Token, msg.Email)).
		Msg("verification email")
	return nil
}

func (m *LogMailer) SendResetPasswordEmail(ctx context.Context, msg auth.ResetPasswordEmail) error {
	m.mu.Lock()
	m.resets = append(m.resets, msg)
	m.mu.Unlock()

	m.log.Info().
		Str("email", msg.Email).
		Str("url", email.ResetPasswordURL(msg.Origin, string(msg.Token), msg.Email)).
		Msg("reset password email")
	return nil
}

// LastVerification returns the most recent verification email sent to addr.
func (m *LogMailer) LastVerification(addr string) (auth.VerificationEmail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.verifications) - 1; i >= 0; i-- {
		if m.verifications[i].Email == addr {
			return m.verifications[i], true
		}
	}
	return auth.VerificationEmail{}, false
}

// LastReset returns the most recent reset email sent to addr.
func (m *LogMailer) LastReset(addr string) (auth.ResetPasswordEmail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.resets) - 1; i >= 0; i-- {
		if m.resets[i].Email == addr {
			return m.resets[i], true
		}
	}
	return auth.ResetPasswordEmail{}, false
}
