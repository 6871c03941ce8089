// Package auth issues and verifies the bearer tokens that identify callers.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityResolver turns a bearer credential into a user id. ok is false
// for any credential that does not verify.
type IdentityResolver interface {
	ResolveCallerID(credential string) (userID string, ok bool)
}

// TokenManager signs and verifies HS256 tokens carrying the user id.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the user.
func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ResolveCallerID verifies signature, algorithm and expiry.
func (m *TokenManager) ResolveCallerID(credential string) (string, bool) {
	if credential == "" {
		return "", false
	}

	var c claims
	token, err := jwt.ParseWithClaims(credential, &c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || c.UserID == "" {
		return "", false
	}
	return c.UserID, true
}
