package ticker

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFeedBroadcastsTicks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testLogger()

	hub := NewHub(log)
	go hub.Run()

	engine := gin.New()
	engine.GET("/ws", hub.Serve)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed := NewFeed(hub, 5*time.Millisecond, map[string]float64{"AAPL": 180.00}, log)
	go feed.Run(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var tick Tick
	require.NoError(t, json.Unmarshal(msg, &tick))
	require.Equal(t, "AAPL", tick.Symbol)
	require.True(t, tick.Price.IsPositive())
	require.False(t, tick.Time.IsZero())
}

func TestStepNeverGoesNonPositive(t *testing.T) {
	feed := NewFeed(nil, time.Second, map[string]float64{"PENNY": 0.01}, testLogger())
	for i := 0; i < 1000; i++ {
		feed.step("PENNY")
		require.GreaterOrEqual(t, feed.prices["PENNY"], 0.01)
	}
}

func TestFeedDefaultsSymbols(t *testing.T) {
	feed := NewFeed(nil, time.Second, nil, testLogger())
	require.Len(t, feed.prices, len(DefaultSymbols))
	for sym := range DefaultSymbols {
		require.Contains(t, feed.prices, sym)
	}
}
