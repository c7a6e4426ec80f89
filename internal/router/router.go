package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/auth"
	"github.com/advisr/backend/internal/handler"
	"github.com/advisr/backend/internal/middleware"
	"github.com/advisr/backend/internal/ticker"
)

type Config struct {
	JWT *auth.Manager

	HealthHandler     *handler.HealthHandler
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	BrokerageHandler  *handler.BrokerageHandler
	NudgeHandler      *handler.NudgeHandler
	PredictionHandler *handler.PredictionHandler
	TickerHub         *ticker.Hub

	CORSOrigin string
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/", cfg.HealthHandler.Root)
	router.GET("/healthz", cfg.HealthHandler.Healthz)
	router.GET("/ws", cfg.TickerHub.Serve)

	api := router.Group("/api")
	requireAuth := middleware.RequireAuth(cfg.JWT)

	registerAuthRoutes(api, cfg.AuthHandler, requireAuth)
	registerUserRoutes(api, cfg.UserHandler, requireAuth)
	registerBrokerageRoutes(api, cfg.BrokerageHandler, requireAuth)
	registerNudgeRoutes(api, cfg.NudgeHandler, requireAuth)
	registerPredictionRoutes(api, cfg.PredictionHandler, requireAuth)

	return router
}
