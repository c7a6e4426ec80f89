package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/advisr/backend/internal/model"
)

type NudgeRepository interface {
	Create(ctx context.Context, nudge *model.Nudge) error
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Nudge, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Alert, error)
}

type gormNudgeRepository struct {
	db *gorm.DB
}

func NewGormNudgeRepository(db *gorm.DB) NudgeRepository {
	return &gormNudgeRepository{db: db}
}

func (r *gormNudgeRepository) Create(ctx context.Context, nudge *model.Nudge) error {
	return r.db.WithContext(ctx).Create(nudge).Error
}

func (r *gormNudgeRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.Nudge, error) {
	var nudges []model.Nudge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&nudges).Error
	if err != nil {
		return nil, err
	}
	return nudges, nil
}

type gormAlertRepository struct {
	db *gorm.DB
}

func NewGormAlertRepository(db *gorm.DB) AlertRepository {
	return &gormAlertRepository{db: db}
}

func (r *gormAlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *gormAlertRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
