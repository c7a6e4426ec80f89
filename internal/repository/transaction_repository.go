package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/advisr/backend/internal/model"
)

type TransactionRepository interface {
	// Append inserts one immutable transaction record. Rows are never
	// updated or deleted afterwards.
	Append(ctx context.Context, tx *model.Transaction) error

	// ListByAccount returns the account's transactions oldest first, the
	// order a replay must fold them in. limit <= 0 means no limit.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]model.Transaction, error)
}

type gormTransactionRepository struct {
	db *gorm.DB
}

func NewGormTransactionRepository(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepository{db: db}
}

func (r *gormTransactionRepository) Append(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *gormTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]model.Transaction, error) {
	var txs []model.Transaction
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("executed_at, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
