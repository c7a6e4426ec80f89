package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/advisr/backend/internal/id"
	"github.com/advisr/backend/internal/model"
	"github.com/advisr/backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Create(ctx context.Context, email string, riskTolerance *float64) (*model.User, error) {
	if email == "" {
		return nil, validationError("missing_email", "email is required")
	}
	user := &model.User{
		ID:            id.New(),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		RiskTolerance: 0.5,
	}
	if riskTolerance != nil {
		user.RiskTolerance = *riskTolerance
	}
	err := s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, &Error{Kind: KindConflict, Code: "email_taken", Message: "an account with this email already exists"}
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return users, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return user, nil
}

// Get returns a user by id; callers may only read their own record.
func (s *UserService) Get(ctx context.Context, id, callerEmail string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	if callerEmail != "" && user.Email != callerEmail {
		return nil, &Error{Kind: KindForbidden, Code: "forbidden", Message: "cannot access another user's record"}
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, email *string, riskTolerance *float64) (*model.User, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if email != nil {
		updates["email"] = *email
	}
	if riskTolerance != nil {
		updates["risk_tolerance"] = *riskTolerance
	}
	err := s.users.Update(ctx, id, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return user, nil
}
