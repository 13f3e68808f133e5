// Package auth issues and verifies session tokens, hashes passwords and
// generates one-time codes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"cashflow/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session token. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
}

func (c Claims) UserID() string { return c.Subject }

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue returns a signed token for userID and the claims it carries.
func (i *TokenIssuer) Issue(userID string) (string, Claims, error) {
	now := i.now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify parses token and checks its signature and expiry. An expired
// token yields core.ErrSessionExpired, anything else core.ErrSessionRequired.
func (i *TokenIssuer) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, core.ErrSessionRequired
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, core.ErrSessionExpired
		}
		return Claims{}, core.ErrSessionRequired
	}
	if claims.Subject == "" {
		return Claims{}, core.ErrSessionRequired
	}
	return claims, nil
}
