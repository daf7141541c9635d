package http_handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

const (
	msgRegistered     = "Success! Please check your email to verify your account."
	msgVerified       = "Email verified successfully"
	msgLoggedIn       = "Login successful"
	msgLoggedOut      = "User logged out successfully"
	msgResetRequested = "Please check your email for the reset password link"
	msgResetDone      = "Password reset successful"
	msgSessionRevoked = "Session revoked"
)

// SessionCookies writes and clears the two session cookies.
type SessionCookies interface {
	Attach(w http.ResponseWriter, user domain.TokenUser, refreshToken string) error
	Clear(w http.ResponseWriter)
}

type AuthHandler struct {
	svc      *auth.Service
	cookies  SessionCookies
	writeErr response.ErrorWriter
}

func NewAuthHandler(svc *auth.Service, cookies SessionCookies, writeErr response.ErrorWriter) *AuthHandler {
	if writeErr == nil {
		writeErr = response.WriteError
	}
	return &AuthHandler{svc: svc, cookies: cookies, writeErr: writeErr}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Input())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", user.UserID).
		Str("role", user.Role).
		Msg("user_registered")

	response.Message(w, http.StatusCreated, msgRegistered)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if err := h.svc.VerifyEmail(r.Context(), req.Input()); err != nil {
		h.writeErr(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, msgVerified)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}

	client := auth.ClientInfo{
		UserAgent: r.UserAgent(),
		IP:        middleware.ClientIP(r),
	}

	res, err := h.svc.Login(r.Context(), req.Input(client))
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(outcome(err)).Inc()
		h.writeErr(w, r, err)
		return
	}

	if err := h.cookies.Attach(w, res.User, res.RefreshToken); err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues("cookie_error").Inc()
		h.writeErr(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.UserID).
		Msg("user_logged_in")

	response.OK(w, dto.LoginData{User: dto.NewUserView(res.User), Message: msgLoggedIn})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeErr(w, r, domain.ErrAuthenticationInvalid())
		return
	}

	if err := h.svc.Logout(r.Context(), userID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	h.cookies.Clear(w)
	response.Message(w, http.StatusOK, msgLoggedOut)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Input()); err != nil {
		h.writeErr(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, msgResetRequested)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Input()); err != nil {
		h.writeErr(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, msgResetDone)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeErr(w, r, domain.ErrAuthenticationInvalid())
		return
	}

	u, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	response.OK(w, dto.MeData{User: dto.NewUserView(u)})
}

func (h *AuthHandler) AdminRevokeSession(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	actorRole, _ := middleware.RoleFromContext(r.Context())

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		h.writeErr(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.RevokeSession(r.Context(), actorID, actorRole, targetID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Msg("session_revoked")

	response.Message(w, http.StatusOK, msgSessionRevoked)
}

// outcome labels a failed login for metrics.
func outcome(err error) string {
	if de, ok := domain.As(err); ok {
		return de.Code
	}
	return "error"
}
