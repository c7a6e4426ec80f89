package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/advisr/backend/internal/model"
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.AuthToken) error

	// Consume atomically marks an unexpired, unconsumed token as used.
	// Returns ErrNotFound when the token does not exist, already expired
	// or was consumed before, so a token can never be replayed.
	Consume(ctx context.Context, token, purpose string) (*model.AuthToken, error)
}

type gormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) TokenRepository {
	return &gormTokenRepository{db: db}
}

func (r *gormTokenRepository) Create(ctx context.Context, token *model.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *gormTokenRepository) Consume(ctx context.Context, token, purpose string) (*model.AuthToken, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.AuthToken{}).
		Where("token = ? AND purpose = ? AND consumed_at IS NULL AND expires_at > ?", token, purpose, now).
		Update("consumed_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var row model.AuthToken
	if err := r.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
