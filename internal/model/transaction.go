package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of one executed trade. Rows are
// append-only: they are never updated or deleted, and replaying them in
// order from an empty position set reproduces the stored portfolio.
type Transaction struct {
	ID         string          `gorm:"column:id;primaryKey" json:"id"`
	AccountID  string          `gorm:"column:account_id;index" json:"account_id"`
	Symbol     string          `gorm:"column:symbol" json:"symbol"`
	Side       string          `gorm:"column:side" json:"side"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric" json:"quantity"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric" json:"price"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric" json:"total"`
	ExecutedAt time.Time       `gorm:"column:executed_at" json:"timestamp"`
}

func (Transaction) TableName() string {
	return "transactions"
}
