package auth

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	defaultOrigin   = "http://localhost:3000"
	defaultResetTTL = 10 * time.Minute
)

type Service struct {
	users       UserStore
	tokens      RefreshTokenStore
	mailer      EmailSender
	hasher      PasswordHasher
	tokenHasher TokenHasher

	// origin is the frontend base URL put into emailed links
	origin   string
	resetTTL time.Duration

	now      func() time.Time
	newToken func(bytesLen int) (string, error)
	audit    func(action string, fields map[string]string)
}

type Config struct {
	Origin           string
	PasswordResetTTL time.Duration
}

func NewService(
	users UserStore,
	tokens RefreshTokenStore,
	mailer EmailSender,
	hasher PasswordHasher,
	tokenHasher TokenHasher,
	cfg Config,
) *Service {
	origin := cfg.Origin
	if origin == "" {
		origin = defaultOrigin
	}
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		hasher:      hasher,
		tokenHasher: tokenHasher,

		origin:   origin,
		resetTTL: resetTTL,

		now:      time.Now,
		newToken: newOpaqueToken,
		audit:    func(string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// ClientInfo is request metadata stored on the session record.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type LoginResult struct {
	User         domain.TokenUser
	RefreshToken string
}

// failed converts a collaborator error into an internal error for op.
// Only domain errors whose code is listed in passthrough are returned unchanged.
func failed(op string, err error, passthrough ...string) error {
	if de, ok := domain.As(err); ok {
		for _, code := range passthrough {
			if de.Code == code {
				return de
			}
		}
	}
	return domain.ErrOperationFailed(op, err)
}
