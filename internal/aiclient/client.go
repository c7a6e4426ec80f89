// Package aiclient talks to the external prediction microservice. Every
// call carries a short-lived service JWT and runs behind a retry loop
// and a circuit breaker; responses are passed through as raw JSON.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/advisr/backend/internal/faulttolerance"
)

// TokenSource mints the bearer token attached to each upstream call.
type TokenSource func() (string, error)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	retryer *faulttolerance.Retryer
	breaker *faulttolerance.CircuitBreaker
	logger  *logrus.Logger
}

func New(baseURL string, tokens TokenSource, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		retryer: faulttolerance.NewRetryer(faulttolerance.DefaultRetryConfig("ai-service"), logger),
		breaker: faulttolerance.NewCircuitBreaker(faulttolerance.CircuitBreakerConfig{Name: "ai-service"}, logger),
		logger:  logger,
	}
}

// Predict fetches the model's short-term prediction for one ticker.
func (c *Client) Predict(ctx context.Context, ticker string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/predict/"+url.PathEscape(ticker), nil)
}

// PortfolioRecommendation asks for an allocation over the given tickers
// at the given risk tolerance ("low", "medium", "high").
func (c *Client) PortfolioRecommendation(ctx context.Context, tickers []string, riskTolerance string) (json.RawMessage, error) {
	body := map[string]any{
		"tickers":        tickers,
		"risk_tolerance": riskTolerance,
	}
	return c.do(ctx, http.MethodPost, "/portfolio", body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	var result json.RawMessage
	err := c.retryer.Execute(ctx, func() error {
		return c.breaker.Execute(ctx, func() error {
			token, err := c.tokens()
			if err != nil {
				return fmt.Errorf("mint service token: %w", err)
			}

			var reader io.Reader
			if payload != nil {
				reader = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("ai service returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
			}
			result = data
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
