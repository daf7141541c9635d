package auth

import (
	"context"
	"crypto/subtle"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/validation"
)

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordInput struct {
	Email    string            `json:"email" validate:"required"`
	Token    domain.ResetToken `json:"token" validate:"required"`
	Password string            `json:"password" validate:"required,min=6,maxbytes=72"`
}

// ForgotPassword issues a reset token for a known email.
// Unknown emails succeed without any write so callers cannot discover accounts.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	const op = "password reset request"

	in.Email = domain.NormalizeEmail(in.Email)
	audit := s.auditor("auth.password_reset.request", map[string]string{"email": in.Email})

	if err := validation.Struct(in); err != nil {
		audit("error", err)
		return err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			audit("ignored", nil)
			return nil
		}
		err = failed(op, err)
		audit("error", err)
		return err
	}

	raw, err := s.newToken(domain.ResetTokenBytes)
	if err != nil {
		err = failed(op, err)
		audit("error", err)
		return err
	}
	token := domain.ResetToken(raw)

	// persist the hash before mailing, so an emailed token is always redeemable
	now := s.now()
	u.SetPasswordReset(s.tokenHasher.Hash(token), now.Add(s.resetTTL))
	u.UpdatedAt = now
	if err := s.users.Save(ctx, u); err != nil {
		err = failed(op, err)
		audit("error", err)
		return err
	}

	if err := s.mailer.SendResetPasswordEmail(ctx, ResetPasswordEmail{
		Name:   u.Name,
		Email:  u.Email,
		Token:  token,
		Origin: s.origin,
	}); err != nil {
		err = failed(op, err)
		audit("error", err)
		return err
	}

	audit("success", nil)
	return nil
}

// ResetPassword replaces the password when the token matches and has not expired.
// Every miss returns nil: callers get the same answer for unknown email, wrong token and expiry.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	const op = "password reset"

	in.Email = domain.NormalizeEmail(in.Email)
	audit := s.auditor("auth.password_reset.confirm", map[string]string{"email": in.Email})

	if err := validation.Struct(in); err != nil {
		audit("error", err)
		return err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			audit("ignored", nil)
			return nil
		}
		err = failed(op, err)
		audit("error", err)
		return err
	}

	now := s.now()
	supplied := s.tokenHasher.Hash(in.Token)
	if !u.ResetActiveAt(now) ||
		subtle.ConstantTimeCompare([]byte(u.PasswordResetTokenHash), []byte(supplied)) != 1 {
		audit("ignored", nil)
		return nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		err = failed(op, err)
		audit("error", err)
		return err
	}

	u.PasswordHash = hash
	u.ClearPasswordReset()
	u.UpdatedAt = now
	if err := s.users.Save(ctx, u); err != nil {
		err = failed(op, err)
		audit("error", err)
		return err
	}

	audit("success", nil)
	return nil
}
