// Package auth handles token minting/verification and password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTTL is the lifetime of a login/refresh token.
	AccessTokenTTL = time.Hour
	// ResetTokenTTL is the lifetime of a password-reset token.
	ResetTokenTTL = time.Hour
	// VerifyTokenTTL is the lifetime of an email-verification token.
	VerifyTokenTTL = 24 * time.Hour
	// ServiceTokenTTL is the lifetime of tokens minted for calls to the
	// prediction service.
	ServiceTokenTTL = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload carried by every token this service signs.
type Claims struct {
	UID     string `json:"uid,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Service string `json:"service,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the service's HS256 tokens.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// MintAccess issues a user session token.
func (m *Manager) MintAccess(uid, email string) (string, error) {
	return m.sign(Claims{UID: uid, Email: email}, AccessTokenTTL)
}

// MintPurpose issues a single-purpose token (password reset, email
// verification) bound to an email address.
func (m *Manager) MintPurpose(email, purpose string, ttl time.Duration) (string, error) {
	return m.sign(Claims{Email: email, Purpose: purpose}, ttl)
}

// MintService issues a short-lived token identifying this backend to
// the prediction service.
func (m *Manager) MintService() (string, error) {
	return m.sign(Claims{Service: "backend"}, ServiceTokenTTL)
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token, returning its claims.
func (m *Manager) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
