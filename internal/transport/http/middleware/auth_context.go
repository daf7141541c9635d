package middleware

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type ctxKey string

const ctxUser ctxKey = "token_user"

func WithUser(ctx context.Context, user domain.TokenUser) context.Context {
	return context.WithValue(ctx, ctxUser, user)
}

func UserFromContext(ctx context.Context) (domain.TokenUser, bool) {
	u, ok := ctx.Value(ctxUser).(domain.TokenUser)
	return u, ok && u.UserID != ""
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	return u.UserID, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	return u.Role, ok && u.Role != ""
}
