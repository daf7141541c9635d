package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type userDoc struct {
	ID                          string     `bson:"_id"`
	Email                       string     `bson:"email"`
	Name                        string     `bson:"name"`
	Password                    string     `bson:"password"`
	Role                        string     `bson:"role"`
	IsVerified                  bool       `bson:"isVerified"`
	Verified                    *time.Time `bson:"verified"`
	VerificationToken           string     `bson:"verificationToken"`
	PasswordToken               string     `bson:"passwordToken"`
	PasswordTokenExpirationDate *time.Time `bson:"passwordTokenExpirationDate"`
	CreatedAt                   time.Time  `bson:"createdAt"`
	UpdatedAt                   time.Time  `bson:"updatedAt"`
}

func toUserDoc(u domain.User) userDoc {
	return userDoc{
		ID:                          u.ID,
		Email:                       domain.NormalizeEmail(u.Email),
		Name:                        u.Name,
		Password:                    u.PasswordHash,
		Role:                        u.Role,
		IsVerified:                  u.IsVerified,
		Verified:                    u.VerifiedAt,
		VerificationToken:           u.VerificationToken,
		PasswordToken:               string(u.PasswordResetTokenHash),
		PasswordTokenExpirationDate: u.PasswordResetExpiry,
		CreatedAt:                   u.CreatedAt,
		UpdatedAt:                   u.UpdatedAt,
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:                     d.ID,
		Email:                  d.Email,
		Name:                   d.Name,
		PasswordHash:           d.Password,
		Role:                   d.Role,
		IsVerified:             d.IsVerified,
		VerifiedAt:             utcPtr(d.Verified),
		VerificationToken:      d.VerificationToken,
		PasswordResetTokenHash: domain.ResetTokenHash(d.PasswordToken),
		PasswordResetExpiry:    utcPtr(d.PasswordTokenExpirationDate),
		CreatedAt:              d.CreatedAt.UTC(),
		UpdatedAt:              d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(coll *mongo.Collection) *UserRepo {
	return &UserRepo{coll: coll}
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepo) CountAll(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	return n, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	doc := toUserDoc(u)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return doc.toDomain(), nil
}

// Save writes every mutable field. Email and createdAt are never rewritten.
func (r *UserRepo) Save(ctx context.Context, u domain.User) error {
	doc := toUserDoc(u)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":                        doc.Name,
		"password":                    doc.Password,
		"role":                        doc.Role,
		"isVerified":                  doc.IsVerified,
		"verified":                    doc.Verified,
		"verificationToken":           doc.VerificationToken,
		"passwordToken":               doc.PasswordToken,
		"passwordTokenExpirationDate": doc.PasswordTokenExpirationDate,
		"updatedAt":                   time.Now().UTC(),
	}})
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
