package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	AdminRevokeSession(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	// Global runs first on every request (request id, metrics, access log).
	Global []func(http.Handler) http.Handler

	AuthMW  func(http.Handler) http.Handler
	AdminMW func(http.Handler) http.Handler

	// RateLimit wraps a public route with a limiter keyed by route name.
	// Nil disables rate limiting.
	RateLimit func(route string) func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}

	limit := deps.RateLimit
	if limit == nil {
		limit = func(string) func(http.Handler) http.Handler { return noop }
	}

	r := chi.NewRouter()
	for _, mw := range deps.Global {
		r.Use(mw)
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		// --- Public ---
		r.With(limit("register")).Post("/register", deps.Auth.Register)
		r.With(limit("verify_email")).Post("/verify-email", deps.Auth.VerifyEmail)
		r.With(limit("login")).Post("/login", deps.Auth.Login)
		r.With(limit("forgot_password")).Post("/forgot-password", deps.Auth.ForgotPassword)
		r.With(limit("reset_password")).Post("/reset-password", deps.Auth.ResetPassword)

		// --- Authenticated ---
		r.With(deps.AuthMW).Delete("/logout", deps.Auth.Logout)
		r.With(deps.AuthMW).Get("/me", deps.Auth.Me)

		// --- Admin ---
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Use(deps.AdminMW)

			r.Post("/users/{id}/sessions/revoke", deps.Auth.AdminRevokeSession)
		})
	})

	return r, nil
}

func noop(next http.Handler) http.Handler { return next }
