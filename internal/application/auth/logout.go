package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Logout deletes the user's session record. Deleting a missing record is not an error.
func (s *Service) Logout(ctx context.Context, userID string) error {
	audit := s.auditor("auth.logout", map[string]string{"user_id": userID})

	if userID == "" {
		err := domain.ErrAuthenticationInvalid()
		audit("error", err)
		return err
	}

	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		err = failed("logout", err)
		audit("error", err)
		return err
	}

	audit("success", nil)
	return nil
}
