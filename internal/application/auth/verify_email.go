package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/validation"
)

type VerifyEmailInput struct {
	Email string `json:"email" validate:"required"`
	Token string `json:"verificationToken" validate:"required"`
}

// VerifyEmail consumes the emailed verification token.
// Unknown user and wrong token fail identically.
func (s *Service) VerifyEmail(ctx context.Context, in VerifyEmailInput) error {
	const op = "email verification"

	in.Email = domain.NormalizeEmail(in.Email)
	audit := s.auditor("auth.verify_email", map[string]string{"email": in.Email})

	if err := validation.Struct(in); err != nil {
		audit("error", err)
		return err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			err = domain.ErrVerificationFailed()
		} else {
			err = failed(op, err)
		}
		audit("error", err)
		return err
	}

	// an empty stored token means already consumed
	if u.VerificationToken == "" || !tokensEqual(u.VerificationToken, in.Token) {
		err := domain.ErrVerificationFailed()
		audit("error", err)
		return err
	}

	u.MarkVerified(s.now())
	u.UpdatedAt = s.now()
	if err := s.users.Save(ctx, u); err != nil {
		err = failed(op, err)
		audit("error", err)
		return err
	}

	audit("success", nil)
	return nil
}
