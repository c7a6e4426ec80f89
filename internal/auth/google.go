package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// GoogleIdentity is the subset of a Google ID token this service needs.
type GoogleIdentity struct {
	UID   string
	Email string
}

// GoogleVerifier validates a Google-issued ID token. The real signature
// check belongs to the identity-provider collaborator; this interface
// keeps it swappable in tests.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// UnverifiedGoogleVerifier decodes the token payload and trusts its
// expiry without checking the signature. Suitable only behind a gateway
// that already verified the token, or for local development.
type UnverifiedGoogleVerifier struct{}

func (UnverifiedGoogleVerifier) Verify(_ context.Context, idToken string) (*GoogleIdentity, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var body struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Exp   int64  `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, ErrInvalidToken
	}
	if body.Sub == "" || body.Email == "" {
		return nil, ErrInvalidToken
	}
	if body.Exp != 0 && time.Now().Unix() > body.Exp {
		return nil, errors.New("google id token expired")
	}
	return &GoogleIdentity{UID: body.Sub, Email: body.Email}, nil
}
