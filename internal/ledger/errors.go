package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySymbol     = errors.New("symbol is required")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidPrice    = errors.New("price must be a positive number")
)

type InvalidTradeSideError struct {
	Side string
}

func (e *InvalidTradeSideError) Error() string {
	return fmt.Sprintf("trade side must be buy or sell, got %q", e.Side)
}

// InsufficientSharesError reports a sell that exceeds the held quantity.
type InsufficientSharesError struct {
	Symbol    string
	Held      decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	if e.Held.IsZero() {
		return fmt.Sprintf("no position in %s", e.Symbol)
	}
	return fmt.Sprintf("insufficient shares of %s (have %s, requested %s)", e.Symbol, e.Held, e.Requested)
}
