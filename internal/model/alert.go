package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Alert struct {
	ID           string          `gorm:"column:id;primaryKey" json:"id"`
	UserID       string          `gorm:"column:user_id;index" json:"user_id"`
	StockSymbol  string          `gorm:"column:stock_symbol" json:"stock_symbol"`
	TriggerPrice decimal.Decimal `gorm:"column:trigger_price;type:numeric" json:"trigger_price"`
	Message      string          `gorm:"column:message" json:"message"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
