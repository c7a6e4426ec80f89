package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Position is one aggregated holding of a symbol within an account.
// AverageCost is the volume-weighted average purchase price of the
// currently held shares; LastPrice is display-only.
type Position struct {
	Symbol      string          `json:"stock_symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	LastPrice   decimal.Decimal `json:"last_price"`
}

// PositionList is the storage form of a position set: an ordered slice
// serialized into a single jsonb column on the portfolio row.
type PositionList []Position

func (l PositionList) Value() (driver.Value, error) {
	if l == nil {
		l = PositionList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *PositionList) Scan(src any) error {
	return scanJSON(src, l)
}

// Portfolio is the per-account position snapshot. The whole row is one
// unit of optimistically-locked state: every mutation re-reads it,
// recomputes Positions and writes back conditionally on Version.
type Portfolio struct {
	AccountID string       `gorm:"column:account_id;primaryKey" json:"account_id"`
	Positions PositionList `gorm:"column:positions;type:jsonb" json:"positions"`
	Version   int64        `gorm:"column:version" json:"-"`
	SyncedAt  *time.Time   `gorm:"column:synced_at" json:"synced_at,omitempty"`
	UpdatedAt time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}
