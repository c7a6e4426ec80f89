package ticker

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Tick is one simulated price observation.
type Tick struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

// Feed emits a random-walk tick per symbol on a fixed interval. The
// sequence is lazy, infinite and not restartable: cancelling the
// context ends it for good.
type Feed struct {
	hub      *Hub
	interval time.Duration
	prices   map[string]float64
	rng      *rand.Rand
	logger   *logrus.Logger
}

// DefaultSymbols are the demo tickers the feed quotes out of the box.
var DefaultSymbols = map[string]float64{
	"AAPL":  182.30,
	"AMZN":  178.45,
	"GOOGL": 148.75,
	"MSFT":  365.20,
	"NVDA":  892.11,
}

func NewFeed(hub *Hub, interval time.Duration, start map[string]float64, logger *logrus.Logger) *Feed {
	if len(start) == 0 {
		start = DefaultSymbols
	}
	prices := make(map[string]float64, len(start))
	for sym, px := range start {
		prices[sym] = px
	}
	return &Feed{
		hub:      hub,
		interval: interval,
		prices:   prices,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

// Run publishes ticks until the context is cancelled.
func (f *Feed) Run(ctx context.Context) {
	t := time.NewTicker(f.interval)
	defer t.Stop()

	f.logger.WithField("interval", f.interval).Info("price feed started")
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("price feed stopped")
			return
		case now := <-t.C:
			for sym := range f.prices {
				f.step(sym)
				tick := Tick{
					Symbol: sym,
					Price:  decimal.NewFromFloat(f.prices[sym]).Round(2),
					Time:   now.UTC(),
				}
				if msg, err := json.Marshal(tick); err == nil {
					f.hub.Broadcast(msg)
				}
			}
		}
	}
}

// step moves one symbol by up to ±0.5%, floored at a cent.
func (f *Feed) step(symbol string) {
	px := f.prices[symbol]
	px *= 1 + (f.rng.Float64()*2-1)*0.005
	if px < 0.01 {
		px = 0.01
	}
	f.prices[symbol] = px
}
