package v1

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec issues and validates HS256-signed JWTs carrying the account
// code as subject. The signing key is process-wide configuration, loaded
// once at startup and never rotated.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a TokenCodec with the given symmetric signing key.
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

// Issue produces a signed token for subject with expiry = now + ttl.
// It returns the compact token string and the absolute expiry.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate verifies signature and expiry and returns the embedded subject.
// Failures map to ErrTokenExpired, ErrTokenSignatureInvalid or
// ErrTokenMalformed. No expiry leeway is applied: a token is invalid at
// any time >= its expiry.
func (c *TokenCodec) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("validate token: %w", ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("validate token: %w", ErrTokenSignatureInvalid)
	case err != nil:
		return "", fmt.Errorf("validate token: %w: %w", ErrTokenMalformed, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("validate token: %w", ErrTokenMalformed)
	}

	return claims.Subject, nil
}
