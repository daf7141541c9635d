package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// JWTSigner signs the payloads carried in the session cookies.
type JWTSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type sessionClaims struct {
	Kind         string           `json:"typ"`
	User         domain.TokenUser `json:"user"`
	RefreshToken string           `json:"refreshToken,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the decoded refresh cookie.
type RefreshClaims struct {
	User         domain.TokenUser
	RefreshToken string
}

func (s *JWTSigner) SignAccessToken(user domain.TokenUser, ttl time.Duration) (string, error) {
	return s.sign(sessionClaims{Kind: tokenKindAccess, User: user}, user.UserID, ttl)
}

func (s *JWTSigner) SignRefreshToken(user domain.TokenUser, refreshToken string, ttl time.Duration) (string, error) {
	return s.sign(sessionClaims{Kind: tokenKindRefresh, User: user, RefreshToken: refreshToken}, user.UserID, ttl)
}

func (s *JWTSigner) sign(claims sessionClaims, subject string, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) VerifyAccessToken(token string) (domain.TokenUser, error) {
	claims, err := s.verify(token, tokenKindAccess)
	if err != nil {
		return domain.TokenUser{}, err
	}
	return claims.User, nil
}

func (s *JWTSigner) VerifyRefreshToken(token string) (RefreshClaims, error) {
	claims, err := s.verify(token, tokenKindRefresh)
	if err != nil {
		return RefreshClaims{}, err
	}
	if claims.RefreshToken == "" {
		return RefreshClaims{}, domain.ErrTokenInvalid()
	}
	return RefreshClaims{User: claims.User, RefreshToken: claims.RefreshToken}, nil
}

func (s *JWTSigner) verify(token, kind string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		// prevent alg confusion
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired()
		}
		return nil, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Kind != kind || claims.User.UserID == "" ||
		!domain.IsValidRole(claims.User.Role) {
		return nil, domain.ErrTokenInvalid()
	}
	return claims, nil
}
