package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

var testClient = ClientInfo{UserAgent: "go-test", IP: "10.0.0.1"}

func loginInput(email, pw string) LoginInput {
	return LoginInput{Email: email, Password: pw, Client: testClient}
}

func TestLogin_MissingFields_ValidationError(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)

	_, err := env.svc.Login(context.Background(), loginInput("", "pw"))
	requireDomainCode(t, err, "missing_field")

	_, err = env.svc.Login(context.Background(), loginInput("a@x.com", ""))
	requireDomainCode(t, err, "missing_field")
}

func TestLogin_UserNotFound_NonEnumerating_InvalidCredentials(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)

	_, err := env.svc.Login(context.Background(), loginInput("missing@x.com", "secret1"))
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_WrongPassword_InvalidCredentials(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")

	_, err := env.svc.Login(context.Background(), loginInput("a@x.com", "nope"))
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_Unverified_EmailNotVerified(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	ctx := context.Background()

	if _, err := env.svc.Register(ctx, validRegister("new@x.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := env.svc.Login(ctx, loginInput("new@x.com", "secret1"))
	requireDomainCode(t, err, "email_not_verified")

	// password is checked first: a wrong password on an unverified account says nothing about verification
	_, err = env.svc.Login(ctx, loginInput("new@x.com", "wrong1"))
	requireDomainCode(t, err, "invalid_credentials")

	if env.tokens.creates != 0 {
		t.Fatalf("no session expected")
	}
}

func TestLogin_Success_CreatesSession(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")

	res, err := env.svc.Login(context.Background(), loginInput("A@x.com", "secret1"))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User != (domain.TokenUser{UserID: "u1", Name: "User u1", Role: "user"}) {
		t.Fatalf("unexpected user view: %+v", res.User)
	}
	if len(res.RefreshToken) != 80 {
		t.Fatalf("refresh token len=%d", len(res.RefreshToken))
	}

	rt := env.tokens.byUser["u1"]
	if rt.Token != res.RefreshToken || !rt.IsValid || rt.UserAgent != "go-test" || rt.IP != "10.0.0.1" {
		t.Fatalf("unexpected record: %+v", rt)
	}
}

func TestLogin_Twice_ReusesRefreshToken(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")
	ctx := context.Background()

	first, err := env.svc.Login(ctx, loginInput("a@x.com", "secret1"))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := env.svc.Login(ctx, loginInput("a@x.com", "secret1"))
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if first.RefreshToken != second.RefreshToken {
		t.Fatalf("expected reuse")
	}
	if env.tokens.creates != 1 {
		t.Fatalf("creates=%d", env.tokens.creates)
	}
}

func TestLogin_RevokedSession_InvalidCredentials(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")
	env.tokens.byUser["u1"] = domain.RefreshToken{UserID: "u1", Token: "old", IsValid: false}

	_, err := env.svc.Login(context.Background(), loginInput("a@x.com", "secret1"))
	requireDomainCode(t, err, "invalid_credentials")

	// still revoked afterwards
	if env.tokens.byUser["u1"].IsValid {
		t.Fatalf("login must not revive a revoked record")
	}
}

func TestLogin_ConcurrentFirstLogin_FallsBackToReuse(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")
	env.tokens.raceWinner = &domain.RefreshToken{UserID: "u1", Token: "winner", IsValid: true}

	res, err := env.svc.Login(context.Background(), loginInput("a@x.com", "secret1"))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.RefreshToken != "winner" {
		t.Fatalf("expected winner token, got %q", res.RefreshToken)
	}
}

func TestLogin_ConcurrentFirstLogin_WinnerRevoked(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")
	env.tokens.raceWinner = &domain.RefreshToken{UserID: "u1", Token: "winner", IsValid: false}

	_, err := env.svc.Login(context.Background(), loginInput("a@x.com", "secret1"))
	requireDomainCode(t, err, "invalid_credentials")
}

func TestLogin_ConcurrentFirstLogin_WinnerGoneOnReread_InternalError(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")
	env.tokens.createErr = domain.ErrRefreshTokenExists()

	_, err := env.svc.Login(context.Background(), loginInput("a@x.com", "secret1"))
	requireDomainCode(t, err, "internal_error")
}

func TestLogin_StoreFailures_InternalError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cases := []struct {
		name  string
		setup func(env testEnv)
	}{
		{"find user", func(env testEnv) { env.users.findByEmailErr = boom }},
		{"find token", func(env testEnv) { env.tokens.findErr = boom }},
		{"create token", func(env testEnv) { env.tokens.createErr = boom }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			env := newSvcForTest(t)
			env.seedVerified("u1", "a@x.com")
			tc.setup(env)

			_, err := env.svc.Login(context.Background(), loginInput("a@x.com", "secret1"))
			requireDomainCode(t, err, "internal_error")
			if !errors.Is(err, boom) {
				t.Fatalf("cause lost: %v", err)
			}
		})
	}
}

func TestLogout_DeletesSession_SecondLogoutNoop(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.seedVerified("u1", "a@x.com")
	ctx := context.Background()

	if _, err := env.svc.Login(ctx, loginInput("a@x.com", "secret1")); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := env.svc.Logout(ctx, "u1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := env.tokens.byUser["u1"]; ok {
		t.Fatalf("session should be deleted")
	}
	if err := env.svc.Logout(ctx, "u1"); err != nil {
		t.Fatalf("second logout should be no-op, got %v", err)
	}

	// next login mints a new token
	res, err := env.svc.Login(ctx, loginInput("a@x.com", "secret1"))
	if err != nil {
		t.Fatalf("relogin: %v", err)
	}
	if env.tokens.creates != 2 || res.RefreshToken == "" {
		t.Fatalf("expected a fresh session")
	}
}

func TestLogout_EmptyUser_AuthenticationInvalid(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)

	requireDomainCode(t, env.svc.Logout(context.Background(), ""), "authentication_invalid")
}

func TestLogout_StoreFailure_InternalError(t *testing.T) {
	t.Parallel()
	env := newSvcForTest(t)
	env.tokens.deleteErr = errors.New("down")

	requireDomainCode(t, env.svc.Logout(context.Background(), "u1"), "internal_error")
}
