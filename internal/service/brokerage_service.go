package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/advisr/backend/internal/id"
	"github.com/advisr/backend/internal/ledger"
	"github.com/advisr/backend/internal/model"
	"github.com/advisr/backend/internal/repository"
)

// tradeRetryLimit bounds the read-compute-write cycles attempted before
// a concurrent-update conflict is surfaced to the caller.
const tradeRetryLimit = 5

type BrokerageService struct {
	portfolios   repository.PortfolioRepository
	transactions repository.TransactionRepository
	connections  repository.ConnectionRepository
	gateway      BrokerageGateway
	logger       *logrus.Logger
}

func NewBrokerageService(
	portfolios repository.PortfolioRepository,
	transactions repository.TransactionRepository,
	connections repository.ConnectionRepository,
	gateway BrokerageGateway,
	logger *logrus.Logger,
) *BrokerageService {
	return &BrokerageService{
		portfolios:   portfolios,
		transactions: transactions,
		connections:  connections,
		gateway:      gateway,
		logger:       logger,
	}
}

type TradeResult struct {
	Transaction model.Transaction  `json:"transaction"`
	Positions   model.PositionList `json:"positions"`
}

// Trade applies one buy/sell to the account's position set. Input
// errors are rejected before any write; lost-update races against
// concurrent trades on the same account are resolved by re-reading the
// snapshot and retrying the conditional write up to tradeRetryLimit
// times.
func (s *BrokerageService) Trade(ctx context.Context, accountID, symbol, sideRaw string, quantity, price float64) (*TradeResult, error) {
	side, err := ledger.ParseSide(sideRaw)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, mapLedgerError(ledger.ErrInvalidQuantity)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, mapLedgerError(ledger.ErrInvalidPrice)
	}
	qty := decimal.NewFromFloat(quantity)
	px := decimal.NewFromFloat(price)

	for attempt := 1; attempt <= tradeRetryLimit; attempt++ {
		current, version, err := s.loadPortfolio(ctx, accountID)
		if err != nil {
			return nil, err
		}

		book, tx, err := ledger.Apply(ledger.FromList(current.Positions), accountID, symbol, side, qty, px)
		if err != nil {
			return nil, mapLedgerError(err)
		}
		current.Positions = book.ToList()

		err = s.portfolios.CommitTrade(ctx, current, version, &tx)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.WithFields(logrus.Fields{
				"account": accountID,
				"symbol":  tx.Symbol,
				"attempt": attempt,
			}).Warn("trade commit lost a version race, retrying")
			continue
		}
		if err != nil {
			return nil, collaboratorError("store_unavailable", err)
		}
		return &TradeResult{Transaction: tx, Positions: current.Positions}, nil
	}

	return nil, &Error{
		Kind:    KindConcurrency,
		Code:    "concurrent_update",
		Message: "portfolio was updated concurrently, trade not applied",
	}
}

type ConnectResult struct {
	Connection  model.BrokerageConnection `json:"connection"`
	Reconnected bool                      `json:"reconnected"`
}

// Connect is an idempotent upsert: reconnecting an existing
// (account, broker) pair flips it back to connected instead of creating
// a second row.
func (s *BrokerageService) Connect(ctx context.Context, accountID, brokerName, credentialRef string) (*ConnectResult, error) {
	if brokerName == "" {
		return nil, validationError("missing_broker_name", "brokerName is required")
	}
	if credentialRef == "" {
		credentialRef = "mock-key-****"
	}

	now := time.Now().UTC()
	existing, err := s.connections.GetByAccountAndBroker(ctx, accountID, brokerName)
	switch {
	case err == nil:
		if err := s.connections.UpdateStatus(ctx, existing.ID, model.ConnectionConnected, &now); err != nil {
			return nil, collaboratorError("store_unavailable", err)
		}
		existing.Status = model.ConnectionConnected
		existing.ConnectedAt = now
		return &ConnectResult{Connection: *existing, Reconnected: true}, nil

	case errors.Is(err, repository.ErrNotFound):
		conn := &model.BrokerageConnection{
			ID:            id.New(),
			AccountID:     accountID,
			BrokerName:    brokerName,
			CredentialRef: credentialRef,
			Status:        model.ConnectionConnected,
			ConnectedAt:   now,
		}
		err := s.connections.Create(ctx, conn)
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race against a concurrent connect; treat as reconnect.
			return s.Connect(ctx, accountID, brokerName, credentialRef)
		}
		if err != nil {
			return nil, collaboratorError("store_unavailable", err)
		}
		return &ConnectResult{Connection: *conn, Reconnected: false}, nil

	default:
		return nil, collaboratorError("store_unavailable", err)
	}
}

// Disconnect soft-deletes the connection: the row stays for audit with
// its status flipped.
func (s *BrokerageService) Disconnect(ctx context.Context, accountID, brokerName string) error {
	if brokerName == "" {
		return validationError("missing_broker_name", "brokerName is required")
	}
	conn, err := s.connections.GetByAccountAndBroker(ctx, accountID, brokerName)
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("connection_not_found", "no connection to %s", brokerName)
	}
	if err != nil {
		return collaboratorError("store_unavailable", err)
	}
	if err := s.connections.UpdateStatus(ctx, conn.ID, model.ConnectionDisconnected, nil); err != nil {
		return collaboratorError("store_unavailable", err)
	}
	return nil
}

func (s *BrokerageService) Status(ctx context.Context, accountID string) ([]model.BrokerageConnection, error) {
	conns, err := s.connections.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return conns, nil
}

// Sync overwrites the account's position snapshot with the one fetched
// from the connected brokerage and stamps syncedAt, using the same
// bounded conditional-write loop as Trade.
func (s *BrokerageService) Sync(ctx context.Context, accountID string) (model.PositionList, error) {
	connected, err := s.connections.HasConnected(ctx, accountID)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	if !connected {
		return nil, stateError("no_active_connection", "no connected brokerage")
	}

	positions, err := s.gateway.FetchPositions(ctx, accountID)
	if err != nil {
		return nil, collaboratorError("brokerage_unavailable", err)
	}

	for attempt := 1; attempt <= tradeRetryLimit; attempt++ {
		current, version, err := s.loadPortfolio(ctx, accountID)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		current.Positions = positions
		current.SyncedAt = &now

		if version == 0 {
			err = s.portfolios.Create(ctx, current)
		} else {
			err = s.portfolios.UpdateCAS(ctx, current, version)
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, collaboratorError("store_unavailable", err)
		}
		return positions, nil
	}

	return nil, &Error{
		Kind:    KindConcurrency,
		Code:    "concurrent_update",
		Message: "portfolio was updated concurrently, sync not applied",
	}
}

func (s *BrokerageService) Positions(ctx context.Context, accountID string) (*model.Portfolio, error) {
	p, _, err := s.loadPortfolio(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Transactions returns the account's trade log oldest first.
func (s *BrokerageService) Transactions(ctx context.Context, accountID string, limit int) ([]model.Transaction, error) {
	txs, err := s.transactions.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return txs, nil
}

// loadPortfolio returns the current snapshot plus its version token;
// an account that never traded gets an empty snapshot at version 0.
func (s *BrokerageService) loadPortfolio(ctx context.Context, accountID string) (*model.Portfolio, int64, error) {
	current, err := s.portfolios.Get(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Portfolio{AccountID: accountID, Positions: model.PositionList{}}, 0, nil
	}
	if err != nil {
		return nil, 0, collaboratorError("store_unavailable", err)
	}
	return current, current.Version, nil
}

func mapLedgerError(err error) *Error {
	var side *ledger.InvalidTradeSideError
	var insufficient *ledger.InsufficientSharesError
	switch {
	case errors.As(err, &side):
		return validationError("invalid_trade_side", "%s", side.Error())
	case errors.Is(err, ledger.ErrEmptySymbol):
		return validationError("invalid_symbol", "symbol is required")
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return validationError("invalid_quantity", "quantity must be a positive number")
	case errors.Is(err, ledger.ErrInvalidPrice):
		return validationError("invalid_price", "price must be a positive number")
	case errors.As(err, &insufficient):
		return stateError("insufficient_shares", "%s", insufficient.Error())
	default:
		return &Error{Kind: KindValidation, Code: "invalid_trade", Message: err.Error()}
	}
}
