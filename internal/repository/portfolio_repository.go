package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/advisr/backend/internal/model"
)

type PortfolioRepository interface {
	// Get returns the portfolio row for the account, or ErrNotFound if
	// the account has never traded or synced.
	Get(ctx context.Context, accountID string) (*model.Portfolio, error)

	// Create inserts a fresh portfolio at version 1. A concurrent create
	// for the same account surfaces as ErrVersionConflict so the caller's
	// read-compute-write loop simply retries.
	Create(ctx context.Context, p *model.Portfolio) error

	// UpdateCAS writes the new snapshot conditionally on the stored
	// version still being expectedVersion, bumping it by one. Returns
	// ErrVersionConflict when the row moved underneath the caller.
	UpdateCAS(ctx context.Context, p *model.Portfolio, expectedVersion int64) error

	// CommitTrade persists the new snapshot and appends its transaction
	// record in one database transaction, so a trade either commits both
	// effects or neither. expectedVersion 0 inserts a fresh portfolio.
	// The transaction timestamp is assigned here, at commit time, so log
	// order within an account matches position commit order.
	CommitTrade(ctx context.Context, p *model.Portfolio, expectedVersion int64, trade *model.Transaction) error
}

type gormPortfolioRepository struct {
	db *gorm.DB
}

func NewGormPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &gormPortfolioRepository{db: db}
}

func (r *gormPortfolioRepository) Get(ctx context.Context, accountID string) (*model.Portfolio, error) {
	var p model.Portfolio
	err := r.db.WithContext(ctx).First(&p, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormPortfolioRepository) Create(ctx context.Context, p *model.Portfolio) error {
	p.Version = 1
	p.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil && isUniqueViolation(err) {
		return ErrVersionConflict
	}
	return err
}

func (r *gormPortfolioRepository) UpdateCAS(ctx context.Context, p *model.Portfolio, expectedVersion int64) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"positions":  p.Positions,
		"version":    expectedVersion + 1,
		"updated_at": now,
	}
	if p.SyncedAt != nil {
		updates["synced_at"] = *p.SyncedAt
	}

	res := r.db.WithContext(ctx).Model(&model.Portfolio{}).
		Where("account_id = ? AND version = ?", p.AccountID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	p.Version = expectedVersion + 1
	p.UpdatedAt = now
	return nil
}

func (r *gormPortfolioRepository) CommitTrade(ctx context.Context, p *model.Portfolio, expectedVersion int64, trade *model.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		now := time.Now().UTC()

		if expectedVersion == 0 {
			p.Version = 1
			p.UpdatedAt = now
			if err := dbtx.Create(p).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrVersionConflict
				}
				return err
			}
		} else {
			res := dbtx.Model(&model.Portfolio{}).
				Where("account_id = ? AND version = ?", p.AccountID, expectedVersion).
				Updates(map[string]any{
					"positions":  p.Positions,
					"version":    expectedVersion + 1,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
			p.Version = expectedVersion + 1
			p.UpdatedAt = now
		}

		trade.ExecutedAt = now
		return dbtx.Create(trade).Error
	})
}
