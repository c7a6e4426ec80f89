// Package ledger implements the position ledger: a pure fold that turns
// a stream of buy/sell trades into a symbol-keyed set of aggregated
// positions plus an immutable transaction record per trade.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/advisr/backend/internal/id"
	"github.com/advisr/backend/internal/model"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide normalizes a caller-supplied side string.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", &InvalidTradeSideError{Side: s}
	}
}

// Book is the in-memory form of an account's position set, keyed by
// symbol for O(1) lookup. A symbol whose quantity reaches zero is
// removed from the map rather than kept as a zero row.
type Book map[string]model.Position

// FromList builds a Book from the stored ordered slice.
func FromList(positions model.PositionList) Book {
	book := make(Book, len(positions))
	for _, p := range positions {
		book[p.Symbol] = p
	}
	return book
}

// ToList serializes a Book back to the storage form, ordered by symbol
// so the persisted document is deterministic.
func (b Book) ToList() model.PositionList {
	list := make(model.PositionList, 0, len(b))
	for _, p := range b {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Symbol < list[j].Symbol })
	return list
}

// Apply validates and applies one trade to the book, returning the next
// book and the transaction record for the trade. The input book is not
// modified; on any error it is returned unchanged and no transaction is
// produced.
//
// Average cost on a buy is the volume-weighted average of the existing
// basis and the new lot, rounded to 2 decimal places at write time.
// Selling never changes the basis of the
// remaining shares; selling the full quantity removes the position.
func Apply(book Book, accountID, symbol string, side Side, quantity, price decimal.Decimal) (Book, model.Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return book, model.Transaction{}, ErrEmptySymbol
	}
	if side != SideBuy && side != SideSell {
		return book, model.Transaction{}, &InvalidTradeSideError{Side: string(side)}
	}
	if !quantity.IsPositive() {
		return book, model.Transaction{}, ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return book, model.Transaction{}, ErrInvalidPrice
	}

	next := make(Book, len(book)+1)
	for k, v := range book {
		next[k] = v
	}

	switch side {
	case SideBuy:
		pos, ok := next[symbol]
		if !ok {
			next[symbol] = model.Position{
				Symbol:      symbol,
				Quantity:    quantity,
				AverageCost: price.Round(2),
				LastPrice:   price,
			}
			break
		}
		newQty := pos.Quantity.Add(quantity)
		cost := pos.AverageCost.Mul(pos.Quantity).Add(price.Mul(quantity))
		pos.AverageCost = cost.Div(newQty).Round(2)
		pos.Quantity = newQty
		pos.LastPrice = price
		next[symbol] = pos

	case SideSell:
		pos, ok := next[symbol]
		if !ok || pos.Quantity.LessThan(quantity) {
			held := decimal.Zero
			if ok {
				held = pos.Quantity
			}
			return book, model.Transaction{}, &InsufficientSharesError{
				Symbol:    symbol,
				Held:      held,
				Requested: quantity,
			}
		}
		pos.Quantity = pos.Quantity.Sub(quantity)
		if pos.Quantity.IsZero() {
			delete(next, symbol)
			break
		}
		pos.LastPrice = price
		next[symbol] = pos
	}

	tx := model.Transaction{
		ID:         id.New(),
		AccountID:  accountID,
		Symbol:     symbol,
		Side:       string(side),
		Quantity:   quantity,
		Price:      price,
		Total:      quantity.Mul(price),
		ExecutedAt: time.Now().UTC(),
	}
	return next, tx, nil
}

// Replay folds a transaction history, oldest first, into the position
// set it produces from empty state. The stored portfolio for an account
// must always equal Replay of its full log.
func Replay(transactions []model.Transaction) (Book, error) {
	book := make(Book)
	for _, tx := range transactions {
		side, err := ParseSide(tx.Side)
		if err != nil {
			return nil, err
		}
		next, _, err := Apply(book, tx.AccountID, tx.Symbol, side, tx.Quantity, tx.Price)
		if err != nil {
			return nil, err
		}
		book = next
	}
	return book, nil
}
