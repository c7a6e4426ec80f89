package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/middleware"
	"github.com/advisr/backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		Email         string   `json:"email"`
		RiskTolerance *float64 `json:"risk_tolerance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	user, err := h.userService.Create(c.Request.Context(), req.Email, req.RiskTolerance)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.GetByEmail(c.Request.Context(), middleware.CallerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"), middleware.CallerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req struct {
		Email         *string  `json:"email"`
		RiskTolerance *float64 `json:"risk_tolerance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.BadRequest(err))
		return
	}
	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), req.Email, req.RiskTolerance)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	user, err := h.userService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "user": user})
}
