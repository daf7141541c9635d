package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type refreshTokenDoc struct {
	ID           string    `bson:"_id"`
	User         string    `bson:"user"`
	RefreshToken string    `bson:"refreshToken"`
	IsValid      bool      `bson:"isValid"`
	UserAgent    string    `bson:"userAgent"`
	IP           string    `bson:"ip"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d refreshTokenDoc) toDomain() domain.RefreshToken {
	return domain.RefreshToken{
		ID:        d.ID,
		UserID:    d.User,
		Token:     d.RefreshToken,
		IsValid:   d.IsValid,
		UserAgent: d.UserAgent,
		IP:        d.IP,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type RefreshTokenRepo struct {
	coll *mongo.Collection
}

func NewRefreshTokenRepo(coll *mongo.Collection) *RefreshTokenRepo {
	return &RefreshTokenRepo{coll: coll}
}

func (r *RefreshTokenRepo) FindByUser(ctx context.Context, userID string) (domain.RefreshToken, error) {
	var doc refreshTokenDoc
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
		}
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	return doc.toDomain(), nil
}

func (r *RefreshTokenRepo) Create(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	doc := refreshTokenDoc{
		ID:           t.ID,
		User:         t.UserID,
		RefreshToken: t.Token,
		IsValid:      t.IsValid,
		UserAgent:    t.UserAgent,
		IP:           t.IP,
		CreatedAt:    t.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.RefreshToken{}, domain.ErrRefreshTokenExists()
		}
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	return doc.toDomain(), nil
}

func (r *RefreshTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *RefreshTokenRepo) Invalidate(ctx context.Context, userID string) error {
	if _, err := r.coll.UpdateOne(ctx, bson.M{"user": userID}, bson.M{"$set": bson.M{"isValid": false}}); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
