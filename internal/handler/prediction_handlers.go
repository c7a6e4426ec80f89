package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/middleware"
	"github.com/advisr/backend/internal/service"
)

type PredictionHandler struct {
	predictions *service.PredictionService
	onboarding  *service.OnboardingService
}

func NewPredictionHandler(predictions *service.PredictionService, onboarding *service.OnboardingService) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, onboarding: onboarding}
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	out, err := h.predictions.Predict(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", out)
}

func (h *PredictionHandler) Portfolio(c *gin.Context) {
	var req struct {
		Tickers       []string `json:"tickers"`
		RiskTolerance string   `json:"risk_tolerance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	out, err := h.predictions.Portfolio(c.Request.Context(), req.Tickers, req.RiskTolerance)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", out)
}

func (h *PredictionHandler) Onboarding(c *gin.Context) {
	var req struct {
		RiskLevel string          `json:"riskLevel"`
		Answers   json.RawMessage `json:"answers"`
		Tickers   []string        `json:"tickers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	result, err := h.onboarding.Complete(c.Request.Context(), middleware.CallerEmail(c), req.RiskLevel, req.Answers, req.Tickers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
