package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/validation"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// Register creates an unverified account and emails its verification token.
// The first account ever created becomes admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.TokenUser, error) {
	const op = "registration"

	in.Email = domain.NormalizeEmail(in.Email)
	audit := s.auditor("auth.register", map[string]string{"email": in.Email})

	if err := validation.Struct(in); err != nil {
		audit("error", err)
		return domain.TokenUser{}, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		err = domain.ErrEmailAlreadyExists()
		audit("error", err)
		return domain.TokenUser{}, err
	case !domain.Is(err, "user_not_found"):
		err = failed(op, err)
		audit("error", err)
		return domain.TokenUser{}, err
	}

	count, err := s.users.CountAll(ctx)
	if err != nil {
		err = failed(op, err)
		audit("error", err)
		return domain.TokenUser{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		err = failed(op, err)
		audit("error", err)
		return domain.TokenUser{}, err
	}

	verificationToken, err := s.newToken(domain.VerificationTokenBytes)
	if err != nil {
		err = failed(op, err)
		audit("error", err)
		return domain.TokenUser{}, err
	}

	now := s.now()
	created, err := s.users.Create(ctx, domain.User{
		ID:                uuid.NewString(),
		Email:             in.Email,
		Name:              in.Name,
		PasswordHash:      hash,
		Role:              string(domain.RoleForNewUser(count)),
		VerificationToken: verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		// lost a race with a concurrent registration: still a duplicate
		err = failed(op, err, "email_already_exists")
		audit("error", err)
		return domain.TokenUser{}, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, VerificationEmail{
		Name:   created.Name,
		Email:  created.Email,
		Token:  verificationToken,
		Origin: s.origin,
	}); err != nil {
		err = failed(op, err)
		audit("error", err)
		return domain.TokenUser{}, err
	}

	audit("success", nil)
	return created.TokenUser(), nil
}
