package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/advisr/backend/internal/id"
	"github.com/advisr/backend/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Portfolio{},
		&model.Transaction{},
		&model.BrokerageConnection{},
		&model.Nudge{},
		&model.Alert{},
		&model.AuthToken{},
	))
	return db
}

func TestPortfolioCASConflict(t *testing.T) {
	db := testDB(t)
	repo := NewGormPortfolioRepository(db)
	ctx := context.Background()

	p := &model.Portfolio{AccountID: "acct-1", Positions: model.PositionList{}}
	require.NoError(t, repo.Create(ctx, p))
	require.Equal(t, int64(1), p.Version)

	// A write with a stale version token must not apply.
	stale := &model.Portfolio{AccountID: "acct-1", Positions: model.PositionList{}}
	require.ErrorIs(t, repo.UpdateCAS(ctx, stale, 99), ErrVersionConflict)

	require.NoError(t, repo.UpdateCAS(ctx, p, 1))
	require.Equal(t, int64(2), p.Version)

	got, err := repo.Get(ctx, "acct-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Version)
}

func TestPortfolioCommitTradeAtomic(t *testing.T) {
	db := testDB(t)
	portfolios := NewGormPortfolioRepository(db)
	transactions := NewGormTransactionRepository(db)
	ctx := context.Background()

	p := &model.Portfolio{
		AccountID: "acct-1",
		Positions: model.PositionList{{
			Symbol:      "AAPL",
			Quantity:    decimal.NewFromInt(10),
			AverageCost: decimal.NewFromInt(100),
			LastPrice:   decimal.NewFromInt(100),
		}},
	}
	tx := &model.Transaction{
		ID:        id.New(),
		AccountID: "acct-1",
		Symbol:    "AAPL",
		Side:      "buy",
		Quantity:  decimal.NewFromInt(10),
		Price:     decimal.NewFromInt(100),
		Total:     decimal.NewFromInt(1000),
	}
	require.NoError(t, portfolios.CommitTrade(ctx, p, 0, tx))
	require.False(t, tx.ExecutedAt.IsZero(), "commit must stamp the transaction")

	// A stale commit leaves both the snapshot and the log untouched.
	staleTx := &model.Transaction{
		ID: id.New(), AccountID: "acct-1", Symbol: "AAPL", Side: "buy",
		Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1), Total: decimal.NewFromInt(1),
	}
	err := portfolios.CommitTrade(ctx, p, 42, staleTx)
	require.ErrorIs(t, err, ErrVersionConflict)

	txs, err := transactions.ListByAccount(ctx, "acct-1", 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got, err := portfolios.Get(ctx, "acct-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Version)
	require.Len(t, got.Positions, 1)
	require.True(t, got.Positions[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestPortfolioCommitTradeCreateRace(t *testing.T) {
	db := testDB(t)
	repo := NewGormPortfolioRepository(db)
	ctx := context.Background()

	first := &model.Portfolio{AccountID: "acct-1", Positions: model.PositionList{}}
	tx1 := &model.Transaction{ID: id.New(), AccountID: "acct-1", Symbol: "AAPL", Side: "buy",
		Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1), Total: decimal.NewFromInt(1)}
	require.NoError(t, repo.CommitTrade(ctx, first, 0, tx1))

	// Second creator loses the insert race and sees a version conflict.
	second := &model.Portfolio{AccountID: "acct-1", Positions: model.PositionList{}}
	tx2 := &model.Transaction{ID: id.New(), AccountID: "acct-1", Symbol: "AAPL", Side: "buy",
		Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1), Total: decimal.NewFromInt(1)}
	require.ErrorIs(t, repo.CommitTrade(ctx, second, 0, tx2), ErrVersionConflict)
}

func TestTokenConsumeOnce(t *testing.T) {
	db := testDB(t)
	repo := NewGormTokenRepository(db)
	ctx := context.Background()

	row := &model.AuthToken{
		Token:     "reset-token-1",
		Email:     "a@example.com",
		Purpose:   model.TokenPurposeReset,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, row))

	got, err := repo.Consume(ctx, "reset-token-1", model.TokenPurposeReset)
	require.NoError(t, err)
	require.NotNil(t, got.ConsumedAt)

	// Replay must fail.
	_, err = repo.Consume(ctx, "reset-token-1", model.TokenPurposeReset)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTokenConsumeExpired(t *testing.T) {
	db := testDB(t)
	repo := NewGormTokenRepository(db)
	ctx := context.Background()

	row := &model.AuthToken{
		Token:     "stale",
		Email:     "a@example.com",
		Purpose:   model.TokenPurposeVerify,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, row))

	_, err := repo.Consume(ctx, "stale", model.TokenPurposeVerify)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserDuplicateEmail(t *testing.T) {
	db := testDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{ID: id.New(), Email: "a@example.com"}))
	err := repo.Create(ctx, &model.User{ID: id.New(), Email: "a@example.com"})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestConnectionUniquePerBroker(t *testing.T) {
	db := testDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	conn := &model.BrokerageConnection{
		ID: id.New(), AccountID: "acct-1", BrokerName: "robinhood",
		Status: model.ConnectionConnected, ConnectedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, conn))

	dup := &model.BrokerageConnection{
		ID: id.New(), AccountID: "acct-1", BrokerName: "robinhood",
		Status: model.ConnectionConnected, ConnectedAt: time.Now().UTC(),
	}
	require.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	ok, err := repo.HasConnected(ctx, "acct-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.UpdateStatus(ctx, conn.ID, model.ConnectionDisconnected, nil))
	ok, err = repo.HasConnected(ctx, "acct-1")
	require.NoError(t, err)
	require.False(t, ok)
}
