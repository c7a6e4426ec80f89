package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/middleware"
	"github.com/advisr/backend/internal/service"
)

type NudgeHandler struct {
	nudgeService *service.NudgeService
}

func NewNudgeHandler(nudgeService *service.NudgeService) *NudgeHandler {
	return &NudgeHandler{nudgeService: nudgeService}
}

func (h *NudgeHandler) CreateNudge(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	nudge, err := h.nudgeService.CreateNudge(c.Request.Context(), middleware.CallerUID(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, nudge)
}

func (h *NudgeHandler) ListNudges(c *gin.Context) {
	nudges, err := h.nudgeService.ListNudges(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nudges)
}

func (h *NudgeHandler) CreateAlert(c *gin.Context) {
	var req struct {
		StockSymbol  string  `json:"stock_symbol"`
		TriggerPrice float64 `json:"trigger_price"`
		Message      string  `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	alert, err := h.nudgeService.CreateAlert(c.Request.Context(), middleware.CallerUID(c), req.StockSymbol, req.TriggerPrice, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (h *NudgeHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.nudgeService.ListAlerts(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}
