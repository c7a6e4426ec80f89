package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/middleware"
	"github.com/advisr/backend/internal/service"
)

type BrokerageHandler struct {
	brokerage *service.BrokerageService
}

func NewBrokerageHandler(brokerage *service.BrokerageService) *BrokerageHandler {
	return &BrokerageHandler{brokerage: brokerage}
}

func (h *BrokerageHandler) Connect(c *gin.Context) {
	var req struct {
		BrokerName    string `json:"brokerName"`
		CredentialRef string `json:"credentialRef"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	result, err := h.brokerage.Connect(c.Request.Context(), middleware.CallerUID(c), req.BrokerName, req.CredentialRef)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	message := "Connected"
	if result.Reconnected {
		status = http.StatusOK
		message = "Reconnected"
	}
	c.JSON(status, gin.H{"connection": result.Connection, "reconnected": result.Reconnected, "message": message})
}

func (h *BrokerageHandler) Status(c *gin.Context) {
	conns, err := h.brokerage.Status(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conns)
}

func (h *BrokerageHandler) Disconnect(c *gin.Context) {
	var req struct {
		BrokerName string `json:"brokerName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	if err := h.brokerage.Disconnect(c.Request.Context(), middleware.CallerUID(c), req.BrokerName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Disconnected from " + req.BrokerName})
}

func (h *BrokerageHandler) Sync(c *gin.Context) {
	positions, err := h.brokerage.Sync(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio synced", "positions": positions})
}

func (h *BrokerageHandler) Trade(c *gin.Context) {
	var req struct {
		Symbol   string   `json:"symbol"`
		Side     string   `json:"side"`
		Type     string   `json:"type"` // legacy alias for side
		Quantity *float64 `json:"quantity"`
		Price    *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	side := req.Side
	if side == "" {
		side = req.Type
	}
	if req.Symbol == "" || side == "" || req.Quantity == nil || req.Price == nil {
		respondError(c, service.MissingFields("symbol, side (buy/sell), quantity, and price are required"))
		return
	}
	result, err := h.brokerage.Trade(c.Request.Context(), middleware.CallerUID(c), req.Symbol, side, *req.Quantity, *req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BrokerageHandler) Positions(c *gin.Context) {
	portfolio, err := h.brokerage.Positions(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

func (h *BrokerageHandler) Transactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	txs, err := h.brokerage.Transactions(c.Request.Context(), middleware.CallerUID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}
