package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/advisr/backend/internal/aiclient"
	"github.com/advisr/backend/internal/auth"
	"github.com/advisr/backend/internal/handler"
	"github.com/advisr/backend/internal/model"
	"github.com/advisr/backend/internal/repository"
	"github.com/advisr/backend/internal/service"
	"github.com/advisr/backend/internal/ticker"
)

// newTestApp wires the whole stack against an in-memory database and a
// stub prediction service, mirroring the wiring in cmd/api.
func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Portfolio{},
		&model.Transaction{},
		&model.BrokerageConnection{},
		&model.Nudge{},
		&model.Alert{},
		&model.AuthToken{},
	))

	aiStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/portfolio":
			io.WriteString(w, `{"allocations":[{"ticker":"SPY","weight":0.6},{"ticker":"BND","weight":0.4}]}`)
		default:
			io.WriteString(w, `{"ticker":"AAPL","prediction":"up","confidence":0.72}`)
		}
	}))
	t.Cleanup(aiStub.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtManager := auth.NewManager("router-test-secret")
	users := repository.NewGormUserRepository(db)
	tokens := repository.NewGormTokenRepository(db)
	portfolios := repository.NewGormPortfolioRepository(db)
	transactions := repository.NewGormTransactionRepository(db)
	connections := repository.NewGormConnectionRepository(db)
	nudges := repository.NewGormNudgeRepository(db)
	alerts := repository.NewGormAlertRepository(db)

	ai := aiclient.New(aiStub.URL, jwtManager.MintService, log)
	authService := service.NewAuthService(users, tokens, jwtManager, auth.UnverifiedGoogleVerifier{}, log)
	userService := service.NewUserService(users)
	brokerageService := service.NewBrokerageService(portfolios, transactions, connections, service.DemoGateway{}, log)
	nudgeService := service.NewNudgeService(nudges, alerts)
	onboardingService := service.NewOnboardingService(users, ai, []string{"SPY", "BND"}, log)
	predictionService := service.NewPredictionService(ai)

	hub := ticker.NewHub(log)
	go hub.Run()

	return NewRouter(&Config{
		JWT:               jwtManager,
		HealthHandler:     handler.NewHealthHandler(db),
		AuthHandler:       handler.NewAuthHandler(authService),
		UserHandler:       handler.NewUserHandler(userService),
		BrokerageHandler:  handler.NewBrokerageHandler(brokerageService),
		NudgeHandler:      handler.NewNudgeHandler(nudgeService),
		PredictionHandler: handler.NewPredictionHandler(predictionService, onboardingService),
		TickerHub:         hub,
		CORSOrigin:        "http://localhost:3000",
	})
}

func doJSON(t *testing.T, app *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// signup registers and logs in, returning a session token.
func signup(t *testing.T, app *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, app, http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, app, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	w := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["ok"])
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t)

	w := doJSON(t, app, http.MethodGet, "/api/brokerage/positions", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, app, http.MethodGet, "/api/brokerage/positions", "not-a-token", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTradeFlow(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "trader@example.com")

	w := doJSON(t, app, http.MethodPost, "/api/brokerage/trade", token,
		gin.H{"symbol": "AAPL", "side": "buy", "quantity": 10, "price": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, app, http.MethodPost, "/api/brokerage/trade", token,
		gin.H{"symbol": "AAPL", "side": "buy", "quantity": 5, "price": 130})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	positions := body["positions"].([]any)
	require.Len(t, positions, 1)
	pos := positions[0].(map[string]any)
	require.Equal(t, "AAPL", pos["stock_symbol"])
	require.Equal(t, "15", pos["quantity"])
	require.Equal(t, "110", pos["average_cost"])

	// Overselling is rejected without touching the snapshot or log.
	w = doJSON(t, app, http.MethodPost, "/api/brokerage/trade", token,
		gin.H{"symbol": "AAPL", "side": "sell", "quantity": 100, "price": 150})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decode(t, w)["error"].(map[string]any)
	require.Equal(t, "insufficient_shares", errBody["code"])

	w = doJSON(t, app, http.MethodGet, "/api/brokerage/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var txs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	require.Len(t, txs, 2)

	// The legacy "type" alias still selects the side.
	w = doJSON(t, app, http.MethodPost, "/api/brokerage/trade", token,
		gin.H{"symbol": "AAPL", "type": "sell", "quantity": 15, "price": 150})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTradeMissingFields(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "trader@example.com")

	w := doJSON(t, app, http.MethodPost, "/api/brokerage/trade", token, gin.H{"symbol": "AAPL"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decode(t, w)["error"].(map[string]any)
	require.Equal(t, "missing_fields", errBody["code"])
}

func TestBrokerageConnectionLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "trader@example.com")

	// Sync before connecting is a state error.
	w := doJSON(t, app, http.MethodPost, "/api/brokerage/sync", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decode(t, w)["error"].(map[string]any)
	require.Equal(t, "no_active_connection", errBody["code"])

	w = doJSON(t, app, http.MethodPost, "/api/brokerage/connect", token, gin.H{"brokerName": "robinhood"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, false, decode(t, w)["reconnected"])

	w = doJSON(t, app, http.MethodPost, "/api/brokerage/connect", token, gin.H{"brokerName": "robinhood"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["reconnected"])

	w = doJSON(t, app, http.MethodPost, "/api/brokerage/sync", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, decode(t, w)["positions"].([]any), 5)

	w = doJSON(t, app, http.MethodGet, "/api/brokerage/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, app, http.MethodDelete, "/api/brokerage/disconnect", token, gin.H{"brokerName": "robinhood"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, app, http.MethodDelete, "/api/brokerage/disconnect", token, gin.H{"brokerName": "fidelity"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, app, http.MethodPost, "/api/brokerage/sync", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserIsolation(t *testing.T) {
	app := newTestApp(t)
	tokenA := signup(t, app, "a@example.com")
	tokenB := signup(t, app, "b@example.com")

	w := doJSON(t, app, http.MethodGet, "/api/users/me", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	otherID := decode(t, w)["id"].(string)

	w = doJSON(t, app, http.MethodGet, "/api/users/"+otherID, tokenA, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, app, http.MethodGet, "/api/users/"+otherID, tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNudgesAndAlerts(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "a@example.com")

	w := doJSON(t, app, http.MethodPost, "/api/nudges", token, gin.H{"message": "rebalance soon"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, app, http.MethodGet, "/api/nudges", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var nudges []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nudges))
	require.Len(t, nudges, 1)

	w = doJSON(t, app, http.MethodPost, "/api/alerts", token,
		gin.H{"stock_symbol": "AAPL", "trigger_price": 180.5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	alert := decode(t, w)
	require.NotEmpty(t, alert["message"], "alert message defaults when omitted")

	w = doJSON(t, app, http.MethodGet, "/api/alerts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPredictProxy(t *testing.T) {
	app := newTestApp(t)

	w := doJSON(t, app, http.MethodGet, "/api/predict/AAPL", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "up", decode(t, w)["prediction"])

	w = doJSON(t, app, http.MethodPost, "/api/portfolio", "",
		gin.H{"tickers": []string{"SPY", "BND"}, "risk_tolerance": "medium"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, decode(t, w)["allocations"])
}

func TestOnboarding(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "a@example.com")

	w := doJSON(t, app, http.MethodPost, "/api/onboarding", token,
		gin.H{"riskLevel": "high", "answers": gin.H{"horizon": "10y"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	require.InDelta(t, 0.7, me["risk_tolerance"].(float64), 1e-9)

	// riskLevel is mandatory.
	w = doJSON(t, app, http.MethodPost, "/api/onboarding", token, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordResetOverHTTP(t *testing.T) {
	app := newTestApp(t)
	signup(t, app, "a@example.com")

	w := doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "a@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	reset, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, reset)

	w = doJSON(t, app, http.MethodPost, "/api/auth/reset-password", "",
		gin.H{"token": reset, "password": "new-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, app, http.MethodPost, "/api/auth/login", "",
		gin.H{"email": "a@example.com", "password": "new-password"})
	require.Equal(t, http.StatusOK, w.Code)
}
