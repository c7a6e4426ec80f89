package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/advisr/backend/internal/model"
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.BrokerageConnection) error
	GetByAccountAndBroker(ctx context.Context, accountID, brokerName string) (*model.BrokerageConnection, error)
	ListByAccount(ctx context.Context, accountID string) ([]model.BrokerageConnection, error)
	// HasConnected reports whether any of the account's connections is
	// currently in the connected state.
	HasConnected(ctx context.Context, accountID string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string, connectedAt *time.Time) error
}

type gormConnectionRepository struct {
	db *gorm.DB
}

func NewGormConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &gormConnectionRepository{db: db}
}

func (r *gormConnectionRepository) Create(ctx context.Context, conn *model.BrokerageConnection) error {
	err := r.db.WithContext(ctx).Create(conn).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *gormConnectionRepository) GetByAccountAndBroker(ctx context.Context, accountID, brokerName string) (*model.BrokerageConnection, error) {
	var conn model.BrokerageConnection
	err := r.db.WithContext(ctx).
		First(&conn, "account_id = ? AND broker_name = ?", accountID, brokerName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *gormConnectionRepository) ListByAccount(ctx context.Context, accountID string) ([]model.BrokerageConnection, error) {
	var conns []model.BrokerageConnection
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("connected_at desc").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *gormConnectionRepository) HasConnected(ctx context.Context, accountID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BrokerageConnection{}).
		Where("account_id = ? AND status = ?", accountID, model.ConnectionConnected).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormConnectionRepository) UpdateStatus(ctx context.Context, id, status string, connectedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if connectedAt != nil {
		updates["connected_at"] = *connectedAt
	}
	res := r.db.WithContext(ctx).Model(&model.BrokerageConnection{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
