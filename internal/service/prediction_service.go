package service

import (
	"context"
	"encoding/json"

	"github.com/advisr/backend/internal/aiclient"
)

// PredictionService proxies the prediction microservice, translating
// its failures into the collaborator error kind.
type PredictionService struct {
	ai *aiclient.Client
}

func NewPredictionService(ai *aiclient.Client) *PredictionService {
	return &PredictionService{ai: ai}
}

func (s *PredictionService) Predict(ctx context.Context, ticker string) (json.RawMessage, error) {
	if ticker == "" {
		return nil, validationError("missing_ticker", "ticker is required")
	}
	out, err := s.ai.Predict(ctx, ticker)
	if err != nil {
		return nil, collaboratorError("ai_service_error", err)
	}
	return out, nil
}

func (s *PredictionService) Portfolio(ctx context.Context, tickers []string, riskTolerance string) (json.RawMessage, error) {
	if len(tickers) == 0 || riskTolerance == "" {
		return nil, validationError("missing_fields", "tickers and risk_tolerance are required")
	}
	out, err := s.ai.PortfolioRecommendation(ctx, tickers, riskTolerance)
	if err != nil {
		return nil, collaboratorError("ai_service_error", err)
	}
	return out, nil
}
