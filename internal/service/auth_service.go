package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/advisr/backend/internal/auth"
	"github.com/advisr/backend/internal/id"
	"github.com/advisr/backend/internal/model"
	"github.com/advisr/backend/internal/repository"
)

// Risk levels accepted by onboarding and registration.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskTolerance maps a risk level to its numeric tolerance. Unknown
// levels fall back to medium.
func RiskTolerance(level string) float64 {
	switch strings.ToLower(level) {
	case RiskLow:
		return 0.3
	case RiskHigh:
		return 0.7
	default:
		return 0.5
	}
}

type AuthService struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	jwt      *auth.Manager
	google   auth.GoogleVerifier
	logger   *logrus.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	jwt *auth.Manager,
	google auth.GoogleVerifier,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt, google: google, logger: logger}
}

type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, email, password string, riskTolerance *float64) (*model.User, error) {
	if email == "" || password == "" {
		return nil, validationError("missing_credentials", "email and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, collaboratorError("hash_failed", err)
	}

	user := &model.User{
		ID:            id.New(),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:  hash,
		RiskTolerance: 0.5,
	}
	if riskTolerance != nil {
		user.RiskTolerance = *riskTolerance
	}

	err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, &Error{Kind: KindConflict, Code: "email_taken", Message: "an account with this email already exists"}
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	s.logger.WithField("user", user.ID).Info("user registered")
	return user, nil
}

// Login verifies the password and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, validationError("missing_credentials", "email and password are required")
	}
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, authError("invalid_credentials", "invalid credentials")
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, authError("invalid_credentials", "invalid credentials")
	}
	token, err := s.jwt.MintAccess(user.ID, user.Email)
	if err != nil {
		return nil, collaboratorError("token_mint_failed", err)
	}
	return &Session{Token: token, User: user}, nil
}

// GoogleLogin accepts a Google ID token, upserting the user on first
// sign-in.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	if idToken == "" {
		return nil, validationError("missing_id_token", "ID token is required")
	}
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, authError("invalid_google_token", "invalid Google ID token")
	}

	user, err := s.users.GetByEmail(ctx, identity.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &model.User{
			ID:            id.New(),
			Email:         identity.Email,
			RiskTolerance: 0.5,
			EmailVerified: true,
		}
		if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return nil, collaboratorError("store_unavailable", err)
		}
	} else if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}

	token, err := s.jwt.MintAccess(user.ID, user.Email)
	if err != nil {
		return nil, collaboratorError("token_mint_failed", err)
	}
	return &Session{Token: token, User: user}, nil
}

// ForgotPassword mints a reset token and persists it with its expiry.
// The response is identical whether or not the email exists, so the
// endpoint cannot be used to probe for accounts. The token is returned
// for the demo flow in place of an outbound email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", validationError("missing_email", "email is required")
	}
	_, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", collaboratorError("store_unavailable", err)
	}

	token, err := s.jwt.MintPurpose(email, model.TokenPurposeReset, auth.ResetTokenTTL)
	if err != nil {
		return "", collaboratorError("token_mint_failed", err)
	}
	row := &model.AuthToken{
		Token:     token,
		Email:     email,
		Purpose:   model.TokenPurposeReset,
		ExpiresAt: time.Now().UTC().Add(auth.ResetTokenTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", collaboratorError("store_unavailable", err)
	}
	s.logger.WithField("email", email).Info("password reset token issued")
	return token, nil
}

// ResetPassword consumes a reset token and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return validationError("missing_fields", "token and password are required")
	}
	claims, err := s.jwt.Verify(token)
	if err != nil || claims.Purpose != model.TokenPurposeReset {
		return validationError("invalid_reset_token", "invalid or expired token")
	}
	if _, err := s.tokens.Consume(ctx, token, model.TokenPurposeReset); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationError("invalid_reset_token", "token has expired or been used")
		}
		return collaboratorError("store_unavailable", err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return collaboratorError("store_unavailable", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return collaboratorError("hash_failed", err)
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{"password_hash": hash}); err != nil {
		return collaboratorError("store_unavailable", err)
	}
	return nil
}

// SendVerification mints an email-verification token for the caller.
func (s *AuthService) SendVerification(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", validationError("missing_email", "email not found in token")
	}
	token, err := s.jwt.MintPurpose(email, model.TokenPurposeVerify, auth.VerifyTokenTTL)
	if err != nil {
		return "", collaboratorError("token_mint_failed", err)
	}
	row := &model.AuthToken{
		Token:     token,
		Email:     email,
		Purpose:   model.TokenPurposeVerify,
		ExpiresAt: time.Now().UTC().Add(auth.VerifyTokenTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", collaboratorError("store_unavailable", err)
	}
	return token, nil
}

// VerifyEmail consumes a verification token and marks the user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return validationError("missing_token", "token is required")
	}
	claims, err := s.jwt.Verify(token)
	if err != nil || claims.Purpose != model.TokenPurposeVerify {
		return validationError("invalid_verification_token", "invalid or expired token")
	}
	if _, err := s.tokens.Consume(ctx, token, model.TokenPurposeVerify); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationError("invalid_verification_token", "token has expired or been used")
		}
		return collaboratorError("store_unavailable", err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return collaboratorError("store_unavailable", err)
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{"email_verified": true}); err != nil {
		return collaboratorError("store_unavailable", err)
	}
	return nil
}

// Refresh issues a fresh session token for already-authenticated claims.
func (s *AuthService) Refresh(_ context.Context, uid, email string) (string, error) {
	if uid == "" || email == "" {
		return "", validationError("invalid_token_data", "token is missing identity claims")
	}
	token, err := s.jwt.MintAccess(uid, email)
	if err != nil {
		return "", collaboratorError("token_mint_failed", err)
	}
	return token, nil
}
