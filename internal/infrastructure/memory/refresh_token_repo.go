package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// RefreshTokenRepo keeps one session record per user.
type RefreshTokenRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.RefreshToken
}

func NewRefreshTokenRepo() *RefreshTokenRepo {
	return &RefreshTokenRepo{byUser: make(map[string]domain.RefreshToken)}
}

func (r *RefreshTokenRepo) FindByUser(ctx context.Context, userID string) (domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byUser[userID]
	if !ok {
		return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
	}
	return t, nil
}

func (r *RefreshTokenRepo) Create(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[t.UserID]; exists {
		return domain.RefreshToken{}, domain.ErrRefreshTokenExists()
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.byUser[t.UserID] = t
	return t, nil
}

func (r *RefreshTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byUser, userID)
	return nil
}

func (r *RefreshTokenRepo) Invalidate(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	t.IsValid = false
	r.byUser[userID] = t
	return nil
}
