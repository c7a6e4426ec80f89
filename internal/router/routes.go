package router

import (
	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/handler"
	"github.com/advisr/backend/internal/middleware"
)

func registerAuthRoutes(api *gin.RouterGroup, h *handler.AuthHandler, requireAuth gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", middleware.RateLimit(5, 10), h.Login)
		auth.POST("/google", h.Google)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/send-verification", requireAuth, h.SendVerification)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/refresh", requireAuth, h.Refresh)
	}
}

func registerUserRoutes(api *gin.RouterGroup, h *handler.UserHandler, requireAuth gin.HandlerFunc) {
	users := api.Group("/users", requireAuth)
	{
		users.POST("", h.Create)
		users.GET("", h.List)
		users.GET("/me", h.Me)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

func registerBrokerageRoutes(api *gin.RouterGroup, h *handler.BrokerageHandler, requireAuth gin.HandlerFunc) {
	brokerage := api.Group("/brokerage", requireAuth)
	{
		brokerage.POST("/connect", h.Connect)
		brokerage.GET("/status", h.Status)
		brokerage.DELETE("/disconnect", h.Disconnect)
		brokerage.POST("/sync", h.Sync)
		brokerage.POST("/trade", h.Trade)
		brokerage.GET("/positions", h.Positions)
		brokerage.GET("/transactions", h.Transactions)
	}
}

func registerNudgeRoutes(api *gin.RouterGroup, h *handler.NudgeHandler, requireAuth gin.HandlerFunc) {
	api.GET("/nudges", requireAuth, h.ListNudges)
	api.POST("/nudges", requireAuth, h.CreateNudge)
	api.GET("/alerts", requireAuth, h.ListAlerts)
	api.POST("/alerts", requireAuth, h.CreateAlert)
}

func registerPredictionRoutes(api *gin.RouterGroup, h *handler.PredictionHandler, requireAuth gin.HandlerFunc) {
	api.GET("/predict/:ticker", h.Predict)
	api.POST("/portfolio", h.Portfolio)
	api.POST("/onboarding", requireAuth, h.Onboarding)
}
