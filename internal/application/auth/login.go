package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/validation"
)

type LoginInput struct {
	Email    string     `json:"email" validate:"required"`
	Password string     `json:"password" validate:"required"`
	Client   ClientInfo `json:"-"`
}

// Login checks credentials, then the verification flag, then the session record.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	const op = "login"

	in.Email = domain.NormalizeEmail(in.Email)
	audit := s.auditor("auth.login", map[string]string{"email": in.Email, "ip": in.Client.IP})

	if err := validation.Struct(in); err != nil {
		audit("error", err)
		return LoginResult{}, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			// Hide not-found behind invalid credentials
			err = domain.ErrInvalidCredentials()
		} else {
			err = failed(op, err)
		}
		audit("error", err)
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		err = domain.ErrInvalidCredentials()
		audit("error", err)
		return LoginResult{}, err
	}

	if !u.IsVerified {
		err := domain.ErrEmailNotVerified()
		audit("error", err)
		return LoginResult{}, err
	}

	refresh, err := s.sessionToken(ctx, u.ID, in.Client)
	if err != nil {
		err = failed(op, err, "invalid_credentials")
		audit("error", err)
		return LoginResult{}, err
	}

	audit("success", nil)
	return LoginResult{User: u.TokenUser(), RefreshToken: refresh}, nil
}

// sessionToken reuses the user's refresh token or mints one.
// A revoked record blocks login; it is never revived here.
func (s *Service) sessionToken(ctx context.Context, userID string, client ClientInfo) (string, error) {
	existing, err := s.tokens.FindByUser(ctx, userID)
	switch {
	case err == nil:
		return reuse(existing)
	case !domain.Is(err, "refresh_token_not_found"):
		return "", err
	}

	token, err := s.newToken(domain.RefreshTokenBytes)
	if err != nil {
		return "", err
	}

	created, err := s.tokens.Create(ctx, domain.RefreshToken{
		UserID:    userID,
		Token:     token,
		IsValid:   true,
		UserAgent: client.UserAgent,
		IP:        client.IP,
		CreatedAt: s.now(),
	})
	if err == nil {
		return created.Token, nil
	}
	if !domain.Is(err, "refresh_token_exists") {
		return "", err
	}

	// concurrent first login won the insert
	existing, err = s.tokens.FindByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return reuse(existing)
}

func reuse(t domain.RefreshToken) (string, error) {
	if !t.IsValid {
		return "", domain.ErrInvalidCredentials()
	}
	return t.Token, nil
}
