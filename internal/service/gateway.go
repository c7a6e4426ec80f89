package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/advisr/backend/internal/model"
)

// BrokerageGateway fetches the positions an account holds at its
// connected broker. The ledger treats the returned list as an opaque
// snapshot; it never recomputes it.
type BrokerageGateway interface {
	FetchPositions(ctx context.Context, accountID string) (model.PositionList, error)
}

// DemoGateway serves a fixed snapshot in place of a real broker
// integration.
type DemoGateway struct{}

func (DemoGateway) FetchPositions(_ context.Context, _ string) (model.PositionList, error) {
	mk := func(symbol string, qty, avg, last string) model.Position {
		return model.Position{
			Symbol:      symbol,
			Quantity:    decimal.RequireFromString(qty),
			AverageCost: decimal.RequireFromString(avg),
			LastPrice:   decimal.RequireFromString(last),
		}
	}
	return model.PositionList{
		mk("AAPL", "15", "175.50", "182.30"),
		mk("AMZN", "12", "155.00", "178.45"),
		mk("GOOGL", "8", "140.00", "148.75"),
		mk("MSFT", "10", "340.00", "365.20"),
		mk("NVDA", "5", "450.00", "892.11"),
	}, nil
}
