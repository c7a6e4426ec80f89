package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/advisr/backend/internal/id"
	"github.com/advisr/backend/internal/model"
	"github.com/advisr/backend/internal/repository"
)

// recentLimit caps nudge/alert listings.
const recentLimit = 20

type NudgeService struct {
	nudges repository.NudgeRepository
	alerts repository.AlertRepository
}

func NewNudgeService(nudges repository.NudgeRepository, alerts repository.AlertRepository) *NudgeService {
	return &NudgeService{nudges: nudges, alerts: alerts}
}

func (s *NudgeService) CreateNudge(ctx context.Context, userID, message string) (*model.Nudge, error) {
	if message == "" {
		return nil, validationError("missing_message", "message is required")
	}
	nudge := &model.Nudge{
		ID:        id.New(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.nudges.Create(ctx, nudge); err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return nudge, nil
}

func (s *NudgeService) ListNudges(ctx context.Context, userID string) ([]model.Nudge, error) {
	nudges, err := s.nudges.ListRecent(ctx, userID, recentLimit)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return nudges, nil
}

func (s *NudgeService) CreateAlert(ctx context.Context, userID, symbol string, triggerPrice float64, message string) (*model.Alert, error) {
	if symbol == "" || triggerPrice <= 0 {
		return nil, validationError("missing_fields", "stock_symbol and trigger_price are required")
	}
	if message == "" {
		message = fmt.Sprintf("Alert for %s at $%v", symbol, triggerPrice)
	}
	alert := &model.Alert{
		ID:           id.New(),
		UserID:       userID,
		StockSymbol:  symbol,
		TriggerPrice: decimal.NewFromFloat(triggerPrice),
		Message:      message,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return alert, nil
}

func (s *NudgeService) ListAlerts(ctx context.Context, userID string) ([]model.Alert, error) {
	alerts, err := s.alerts.ListRecent(ctx, userID, recentLimit)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	return alerts, nil
}
