package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type RefreshTokenRepo struct {
	db *sql.DB
}

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) FindByUser(ctx context.Context, userID string) (domain.RefreshToken, error) {
	const q = `
SELECT id, user_id, token, is_valid, user_agent, ip, created_at
FROM refresh_tokens
WHERE user_id = $1
LIMIT 1;
`
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&t.ID, &t.UserID, &t.Token, &t.IsValid, &t.UserAgent, &t.IP, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
		}
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *RefreshTokenRepo) Create(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	const q = `
INSERT INTO refresh_tokens (id, user_id, token, is_valid, user_agent, ip)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING created_at;
`
	if err := r.db.QueryRowContext(ctx, q,
		t.ID, t.UserID, t.Token, t.IsValid, t.UserAgent, t.IP,
	).Scan(&t.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.RefreshToken{}, domain.ErrRefreshTokenExists()
		}
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *RefreshTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1;`, userID); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *RefreshTokenRepo) Invalidate(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET is_valid = FALSE WHERE user_id = $1;`, userID); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
