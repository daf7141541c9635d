package auth

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// ResumeSession validates a refresh token presented for userID and returns a
// fresh view of the user so the caller can re-issue session cookies.
func (s *Service) ResumeSession(ctx context.Context, userID, refreshToken string) (LoginResult, error) {
	if userID == "" || refreshToken == "" {
		return LoginResult{}, domain.ErrAuthenticationInvalid()
	}

	rt, err := s.tokens.FindByUser(ctx, userID)
	if err != nil {
		if domain.Is(err, "refresh_token_not_found") {
			return LoginResult{}, domain.ErrAuthenticationInvalid()
		}
		return LoginResult{}, failed("session refresh", err)
	}
	if !rt.IsValid || !tokensEqual(rt.Token, refreshToken) {
		return LoginResult{}, domain.ErrAuthenticationInvalid()
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return LoginResult{}, domain.ErrAuthenticationInvalid()
		}
		return LoginResult{}, failed("session refresh", err)
	}

	return LoginResult{User: u.TokenUser(), RefreshToken: rt.Token}, nil
}

// CurrentUser returns the token-user view for an authenticated id.
func (s *Service) CurrentUser(ctx context.Context, userID string) (domain.TokenUser, error) {
	if userID == "" {
		return domain.TokenUser{}, domain.ErrAuthenticationInvalid()
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.TokenUser{}, domain.ErrAuthenticationInvalid()
		}
		return domain.TokenUser{}, failed("current user lookup", err)
	}
	return u.TokenUser(), nil
}

// RevokeSession marks the target user's session record invalid.
// Only admin should be able to call this (router/middleware enforces),
// but service still enforces core policy.
// A revoked record is never made valid again; login keeps failing until it is deleted.
func (s *Service) RevokeSession(ctx context.Context, actorID, actorRole, targetUserID string) error {
	targetUserID = strings.TrimSpace(targetUserID)
	audit := s.auditor("admin.revoke_session", map[string]string{
		"actor_id":   actorID,
		"actor_role": actorRole,
		"target_id":  targetUserID,
	})

	if targetUserID == "" {
		err := domain.ErrMissingField("id")
		audit("error", err)
		return err
	}

	if domain.RoleRank(actorRole) < domain.RoleRank(string(domain.RoleAdmin)) {
		err := domain.ErrInsufficientRole(string(domain.RoleAdmin))
		audit("error", err)
		return err
	}

	// ensure user exists (so handler returns 404)
	if _, err := s.users.FindByID(ctx, targetUserID); err != nil {
		err = failed("session revocation", err, "user_not_found")
		audit("error", err)
		return err
	}

	if err := s.tokens.Invalidate(ctx, targetUserID); err != nil {
		err = failed("session revocation", err)
		audit("error", err)
		return err
	}

	audit("success", nil)
	return nil
}
