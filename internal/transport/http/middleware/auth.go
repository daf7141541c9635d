package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// SessionCookies reads and re-issues the signed session cookies.
type SessionCookies interface {
	ReadAccess(r *http.Request) (domain.TokenUser, error)
	ReadRefresh(r *http.Request) (security.RefreshClaims, error)
	Attach(w http.ResponseWriter, user domain.TokenUser, refreshToken string) error
}

// SessionResumer checks a refresh token against the stored session record.
type SessionResumer interface {
	ResumeSession(ctx context.Context, userID, refreshToken string) (auth.LoginResult, error)
}

// Authenticate accepts a valid access cookie as is. Otherwise it falls back to
// the refresh cookie, which must match a valid stored session; on success both
// cookies are re-issued. The token user is put into the request context.
func Authenticate(cookies SessionCookies, sessions SessionResumer, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := cookies.ReadAccess(r); err == nil && user.UserID != "" {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
				return
			}

			claims, err := cookies.ReadRefresh(r)
			if err != nil || claims.User.UserID == "" || claims.RefreshToken == "" {
				SessionResumeTotal.WithLabelValues("missing_or_invalid").Inc()
				writeErr(w, r, domain.ErrAuthenticationInvalid())
				return
			}

			res, err := sessions.ResumeSession(r.Context(), claims.User.UserID, claims.RefreshToken)
			if err != nil {
				SessionResumeTotal.WithLabelValues("rejected").Inc()
				writeErr(w, r, err)
				return
			}

			if err := cookies.Attach(w, res.User, res.RefreshToken); err != nil {
				writeErr(w, r, err)
				return
			}
			SessionResumeTotal.WithLabelValues("success").Inc()

			logger.WithCtx(r.Context()).Debug().
				Str("user_id", res.User.UserID).
				Msg("session_resumed")

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), res.User)))
		})
	}
}
