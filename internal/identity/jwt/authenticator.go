// Package jwt implements token issuing and validation with HMAC-signed JWTs.
package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/identity"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
)

// Config contains JWT authenticator configuration.
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
}

// Authenticator issues and validates HS256 tokens. Tokens are fully stateless:
// there is no server-side session table and no revocation list.
type Authenticator struct {
	secret        []byte
	tokenDuration time.Duration
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{
		secret:        []byte(cfg.SecretKey),
		tokenDuration: cfg.TokenDuration,
	}
}

// claims carries the identity triple alongside the registered claims.
type claims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token embedding the user's id, username and role.
func (a *Authenticator) GenerateToken(_ context.Context, user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenDuration)),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token and returns the embedded identity.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (*httputil.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, identity.ErrInvalidToken
	}

	if c.Subject == "" || !c.Role.IsValid() {
		return nil, identity.ErrInvalidToken
	}

	return &httputil.Identity{
		UserID:   c.Subject,
		Username: c.Username,
		Role:     c.Role,
	}, nil
}
