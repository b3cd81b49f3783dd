// Package auth issues and validates the bearer tokens that identify task
// owners. Authentication is optional: when no signing secret is configured
// the API serves anonymous requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/styleforge/styleforge-api/internal/config"
)

// Token validation errors.
var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

const (
	minSecretLength = 32
	tokenLifetime   = 24 * time.Hour
	clockSkew       = 2 * time.Minute
)

// Claims are the validated contents of a bearer token.
type Claims struct {
	// OwnerID identifies the task owner. It scopes task listing and is
	// recorded on every task the owner creates.
	OwnerID string
}

// TokenService issues and validates owner bearer tokens.
type TokenService interface {
	GenerateToken(ctx context.Context, ownerID string) (string, error)
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// hmacTokenService signs tokens with HMAC-SHA256.
type hmacTokenService struct {
	signingKey []byte
	timeFunc   func() time.Time
}

var _ TokenService = (*hmacTokenService)(nil)

type ownerClaims struct {
	OwnerID string `json:"oid"`
	jwt.RegisteredClaims
}

// NewTokenService creates a TokenService from the auth configuration.
// Returns (nil, nil) when no secret is configured, which disables auth.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}

	return &hmacTokenService{
		signingKey: []byte(cfg.JWTSecret),
		timeFunc:   time.Now,
	}, nil
}

// GenerateToken creates a signed token identifying the owner.
func (s *hmacTokenService) GenerateToken(ctx context.Context, ownerID string) (string, error) {
	now := s.timeFunc()

	claims := ownerClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and time claims and returns the
// owner identity.
func (s *hmacTokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&ownerClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ownerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.OwnerID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{OwnerID: claims.OwnerID}, nil
}
