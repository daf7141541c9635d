package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
UserStore
---------
Persistence port for users.
Emails are passed already normalized.
FindByEmail / FindByID return domain.ErrUserNotFound when absent.
Create returns domain.ErrEmailAlreadyExists when the unique email index rejects the insert.
*/
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	Save(ctx context.Context, u domain.User) error
}

/*
RefreshTokenStore
-----------------
One session record per user, keyed by user id.
FindByUser returns domain.ErrRefreshTokenNotFound when absent.
Create returns domain.ErrRefreshTokenExists when a record for the user already exists.
DeleteByUser and Invalidate are no-ops for users without a record.
*/
type RefreshTokenStore interface {
	FindByUser(ctx context.Context, userID string) (domain.RefreshToken, error)
	Create(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error)
	DeleteByUser(ctx context.Context, userID string) error
	Invalidate(ctx context.Context, userID string) error
}

/*
EmailSender
-----------
Delivers verification and reset links. Calls are awaited; a failure
fails the operation.
*/
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, msg VerificationEmail) error
	SendResetPasswordEmail(ctx context.Context, msg ResetPasswordEmail) error
}

type VerificationEmail struct {
	Name   string
	Email  string
	Token  string
	Origin string
}

// ResetPasswordEmail carries the plaintext token; only its hash is ever stored.
type ResetPasswordEmail struct {
	Name   string
	Email  string
	Token  domain.ResetToken
	Origin string
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenHasher
-----------
Deterministic one-way hash for reset tokens at rest, so stored values
can be compared by equality.
*/
type TokenHasher interface {
	Hash(token domain.ResetToken) domain.ResetTokenHash
}
