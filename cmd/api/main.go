package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/advisr/backend/config"
	"github.com/advisr/backend/internal/aiclient"
	"github.com/advisr/backend/internal/auth"
	"github.com/advisr/backend/internal/handler"
	"github.com/advisr/backend/internal/repository"
	"github.com/advisr/backend/internal/router"
	"github.com/advisr/backend/internal/service"
	"github.com/advisr/backend/internal/ticker"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before serving")
	flag.Parse()

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatalf("Failed to get sql.DB: %v", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			logger.Fatalf("Goose: failed to set dialect: %v", err)
		}
		logger.Info("Running database migrations...")
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			logger.Fatalf("Goose migration failed: %v", err)
		}
	}

	jwtManager := auth.NewManager(cfg.JWTSecret)
	ai := aiclient.New(cfg.AIServiceURL, jwtManager.MintService, logger)

	userRepo := repository.NewGormUserRepository(db)
	portfolioRepo := repository.NewGormPortfolioRepository(db)
	transactionRepo := repository.NewGormTransactionRepository(db)
	connectionRepo := repository.NewGormConnectionRepository(db)
	nudgeRepo := repository.NewGormNudgeRepository(db)
	alertRepo := repository.NewGormAlertRepository(db)
	tokenRepo := repository.NewGormTokenRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager, auth.UnverifiedGoogleVerifier{}, logger)
	userService := service.NewUserService(userRepo)
	brokerageService := service.NewBrokerageService(portfolioRepo, transactionRepo, connectionRepo, service.DemoGateway{}, logger)
	nudgeService := service.NewNudgeService(nudgeRepo, alertRepo)
	onboardingService := service.NewOnboardingService(userRepo, ai, cfg.OnboardingTickers, logger)
	predictionService := service.NewPredictionService(ai)

	hub := ticker.NewHub(logger)
	feed := ticker.NewFeed(hub, cfg.TickInterval, nil, logger)

	routerConfig := &router.Config{
		JWT:               jwtManager,
		HealthHandler:     handler.NewHealthHandler(db),
		AuthHandler:       handler.NewAuthHandler(authService),
		UserHandler:       handler.NewUserHandler(userService),
		BrokerageHandler:  handler.NewBrokerageHandler(brokerageService),
		NudgeHandler:      handler.NewNudgeHandler(nudgeService),
		PredictionHandler: handler.NewPredictionHandler(predictionService, onboardingService),
		TickerHub:         hub,
		CORSOrigin:        cfg.CORSOrigin,
	}
	engine := router.NewRouter(routerConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run()
	go feed.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine,
	}
	go func() {
		logger.Infof("Server running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
}
