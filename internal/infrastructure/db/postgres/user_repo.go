package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type userRow struct {
	ID                     string
	Email                  string
	Name                   string
	PasswordHash           string
	Role                   string
	IsVerified             bool
	VerifiedAt             sql.NullTime
	VerificationToken      string
	PasswordResetTokenHash string
	PasswordResetExpiresAt sql.NullTime
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

const userColumns = `id, email, name, password_hash, role, is_verified, verified_at, verification_token,
password_reset_token_hash, password_reset_expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Name,
		&ur.PasswordHash,
		&ur.Role,
		&ur.IsVerified,
		&ur.VerifiedAt,
		&ur.VerificationToken,
		&ur.PasswordResetTokenHash,
		&ur.PasswordResetExpiresAt,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func ptrNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:                     ur.ID,
		Email:                  ur.Email,
		Name:                   ur.Name,
		PasswordHash:           ur.PasswordHash,
		Role:                   ur.Role,
		IsVerified:             ur.IsVerified,
		VerifiedAt:             nullTimePtr(ur.VerifiedAt),
		VerificationToken:      ur.VerificationToken,
		PasswordResetTokenHash: domain.ResetTokenHash(ur.PasswordResetTokenHash),
		PasswordResetExpiry:    nullTimePtr(ur.PasswordResetExpiresAt),
		CreatedAt:              ur.CreatedAt.UTC(),
		UpdatedAt:              ur.UpdatedAt.UTC(),
	}
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1;`
	return r.queryOne(ctx, q, email)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1;`
	return r.queryOne(ctx, q, id)
}

func (r *UserRepo) queryOne(ctx context.Context, q string, arg string) (domain.User, error) {
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	return n, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = domain.NormalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	q := `
INSERT INTO users (id, email, name, password_hash, role, is_verified, verified_at, verification_token,
                   password_reset_token_hash, password_reset_expires_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + userColumns + `;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsVerified, ptrNullTime(u.VerifiedAt),
		u.VerificationToken, string(u.PasswordResetTokenHash), ptrNullTime(u.PasswordResetExpiry),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// Save writes every mutable field. Email and created_at are never rewritten.
func (r *UserRepo) Save(ctx context.Context, u domain.User) error {
	const q = `
UPDATE users
SET name = $2,
    password_hash = $3,
    role = $4,
    is_verified = $5,
    verified_at = $6,
    verification_token = $7,
    password_reset_token_hash = $8,
    password_reset_expires_at = $9,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q,
		u.ID, u.Name, u.PasswordHash, u.Role, u.IsVerified, ptrNullTime(u.VerifiedAt),
		u.VerificationToken, string(u.PasswordResetTokenHash), ptrNullTime(u.PasswordResetExpiry),
	)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
