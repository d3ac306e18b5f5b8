package auth

import (
	"errors"
	"fmt"
	"time"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

//go:generate go run go.uber.org/mock/mockgen -source=token.go -destination=../mocks/mock_token.go -package=mocks

const issuer = "chat-relay"

type ITokenService interface {
	Issue(identity domain.Identity) (string, error)
	Verify(token string) (int64, error)
}

// TokenService issues and verifies HS256 identity tokens.
// It holds no per-token state: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenService(secret []byte, ttl time.Duration, clk clock.Clock) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, clock: clk}
}

// Issue signs a token for the identity, valid for the configured duration.
func (s *TokenService) Issue(identity domain.Identity) (string, error) {
	now := s.clock.Now()
	claims := &CustomClaims{
		UserID: UserID(identity.ID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the user id carried by the token.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, errs.ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", errs.ErrTokenMalformed, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return 0, errs.ErrTokenMalformed
	}
	if claims.UserID == 0 {
		return 0, fmt.Errorf("%w: missing userId", errs.ErrTokenMalformed)
	}
	return int64(claims.UserID), nil
}
