package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
)

type testEnv struct {
	svc     *auth.Service
	users   *memory.UserRepo
	tokens  *memory.RefreshTokenRepo
	mailer  *memory.LogMailer
	cookies *security.CookieAttacher
	h       *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepo()
	tokens := memory.NewRefreshTokenRepo()
	mailer := memory.NewLogMailer(zerolog.Nop())

	svc := auth.NewService(users, tokens, mailer,
		security.NewBcryptHasher(bcrypt.MinCost),
		security.NewSHA256TokenHasher(),
		auth.Config{Origin: "http://localhost:3000", PasswordResetTTL: 10 * time.Minute},
	)
	cookies := security.NewCookieAttacher(security.NewJWTSigner("test-secret", "account-service"), time.Hour, 24*time.Hour, false)

	return &testEnv{
		svc:     svc,
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		cookies: cookies,
		h:       NewAuthHandler(svc, cookies, nil),
	}
}

// seedVerified registers and verifies an account through the service.
func (e *testEnv) seedVerified(t *testing.T, email, name, password string) domain.TokenUser {
	t.Helper()
	ctx := context.Background()

	u, err := e.svc.Register(ctx, auth.RegisterInput{Email: email, Name: name, Password: password})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	v, ok := e.mailer.LastVerification(email)
	if !ok {
		t.Fatalf("no verification email for %s", email)
	}
	if err := e.svc.VerifyEmail(ctx, auth.VerifyEmailInput{Email: email, Token: v.Token}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return u
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes the {"data": ...} envelope of r into out.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Data) == 0 {
		t.Fatalf("decode json failed; body=%s", string(raw))
	}
	if err := json.Unmarshal(wrapped.Data, out); err != nil {
		t.Fatalf("decode wrapped.data failed; body=%s err=%v", string(raw), err)
	}
}

// mustErrorCode returns error.code from an error response body.
func mustErrorCode(t *testing.T, r io.Reader) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

// readCookie finds cookie by name from response headers.
func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func withUserCtx(req *http.Request, user domain.TokenUser) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

// withURLParam injects chi URL param (e.g. /users/{id}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}
