package security

import (
	"strings"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var alice = domain.TokenUser{UserID: "u1", Name: "Alice", Role: "admin"}

func TestJWTSigner_Access_SignAndVerify(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service")
	tok, err := s.SignAccessToken(alice, 2*time.Minute)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	got, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if got != alice {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestJWTSigner_Refresh_SignAndVerify(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service")
	tok, err := s.SignRefreshToken(alice, "opaque-rt", time.Hour)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	got, err := s.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if got.User != alice || got.RefreshToken != "opaque-rt" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestJWTSigner_KindsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service")
	access, _ := s.SignAccessToken(alice, time.Hour)
	refresh, _ := s.SignRefreshToken(alice, "rt", time.Hour)

	if _, err := s.VerifyRefreshToken(access); !domain.Is(err, "token_invalid") {
		t.Fatalf("access token must not verify as refresh, got %v", err)
	}
	if _, err := s.VerifyAccessToken(refresh); !domain.Is(err, "token_invalid") {
		t.Fatalf("refresh token must not verify as access, got %v", err)
	}
}

func TestJWTSigner_Verify_Expired_ReturnsTokenExpired(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service")
	tok, err := s.SignAccessToken(alice, -1*time.Second) // already expired
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	if _, err := s.VerifyAccessToken(tok); !domain.Is(err, "token_expired") {
		t.Fatalf("expected token_expired, got %v", err)
	}
}

func TestJWTSigner_Verify_WrongSecret_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s1 := NewJWTSigner("secret1", "account-service")
	s2 := NewJWTSigner("secret2", "account-service")

	tok, _ := s1.SignAccessToken(alice, time.Minute)
	if _, err := s2.VerifyAccessToken(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTSigner_Verify_WrongIssuer_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	tok, _ := NewJWTSigner("secret", "someone-else").SignAccessToken(alice, time.Minute)
	if _, err := NewJWTSigner("secret", "account-service").VerifyAccessToken(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTSigner_Verify_AlgNone_Rejected(t *testing.T) {
	t.Parallel()

	claims := sessionClaims{
		Kind: tokenKindAccess,
		User: alice,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "account-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	s := NewJWTSigner("secret", "account-service")
	if _, err := s.VerifyAccessToken(tok); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}

func TestJWTSigner_Verify_UnknownRole_ReturnsTokenInvalid(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service")
	for _, role := range []string{"", "root"} {
		u := domain.TokenUser{UserID: "u1", Name: "Alice", Role: role}

		access, err := s.SignAccessToken(u, time.Minute)
		if err != nil {
			t.Fatalf("sign err: %v", err)
		}
		if _, err := s.VerifyAccessToken(access); !domain.Is(err, "token_invalid") {
			t.Fatalf("role %q: expected token_invalid, got %v", role, err)
		}

		refresh, err := s.SignRefreshToken(u, "opaque-rt", time.Minute)
		if err != nil {
			t.Fatalf("sign err: %v", err)
		}
		if _, err := s.VerifyRefreshToken(refresh); !domain.Is(err, "token_invalid") {
			t.Fatalf("role %q: expected token_invalid, got %v", role, err)
		}
	}
}

func TestJWTSigner_Verify_Garbage(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service")
	if _, err := s.VerifyAccessToken(strings.Repeat("x", 20)); !domain.Is(err, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", err)
	}
}
