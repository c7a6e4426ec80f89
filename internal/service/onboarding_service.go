package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/advisr/backend/internal/aiclient"
	"github.com/advisr/backend/internal/model"
	"github.com/advisr/backend/internal/repository"
)

type OnboardingService struct {
	users          repository.UserRepository
	ai             *aiclient.Client
	defaultTickers []string
	logger         *logrus.Logger
}

func NewOnboardingService(users repository.UserRepository, ai *aiclient.Client, defaultTickers []string, logger *logrus.Logger) *OnboardingService {
	return &OnboardingService{users: users, ai: ai, defaultTickers: defaultTickers, logger: logger}
}

type OnboardingResult struct {
	User           *model.User     `json:"user"`
	Recommendation json.RawMessage `json:"recommendation"`
}

// Complete stores the questionnaire outcome on the user's record and
// asks the prediction service for a starter allocation. The
// recommendation is best-effort: if the AI service is down onboarding
// still succeeds with a null recommendation.
func (s *OnboardingService) Complete(ctx context.Context, email, riskLevel string, answers json.RawMessage, tickers []string) (*OnboardingResult, error) {
	if riskLevel == "" {
		return nil, validationError("missing_risk_level", "riskLevel is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("user_not_found", "user not found")
	}
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}

	questionCount := 0
	if len(answers) > 0 {
		var list []json.RawMessage
		if json.Unmarshal(answers, &list) == nil {
			questionCount = len(list)
		}
	}

	profile := &model.RiskProfile{
		RiskLevel:     riskLevel,
		AnsweredAt:    time.Now().UTC(),
		QuestionCount: questionCount,
	}
	updates := map[string]any{
		"risk_tolerance": RiskTolerance(riskLevel),
		"risk_level":     riskLevel,
		"risk_profile":   profile,
		"risk_answers":   model.RawJSON(answers),
		"updated_at":     time.Now().UTC(),
	}
	if err := s.users.Update(ctx, user.ID, updates); err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}
	user, err = s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, collaboratorError("store_unavailable", err)
	}

	if len(tickers) == 0 {
		tickers = s.defaultTickers
	}
	recommendation, aiErr := s.ai.PortfolioRecommendation(ctx, tickers, strings.ToLower(riskLevel))
	if aiErr != nil {
		s.logger.WithError(aiErr).Warn("onboarding portfolio recommendation failed")
		recommendation = nil
	}

	return &OnboardingResult{User: user, Recommendation: recommendation}, nil
}
