package faulttolerance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes when the breaker trips and recovers.
type CircuitBreakerConfig struct {
	MaxFailures      int           // consecutive failures before opening
	Timeout          time.Duration // open duration before probing half-open
	SuccessThreshold int           // consecutive successes to close again
	Name             string
}

type CircuitBreaker struct {
	config      CircuitBreakerConfig
	state       State
	failures    int
	successes   int
	lastFailure time.Time
	mu          sync.Mutex
	logger      *logrus.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig, logger *logrus.Logger) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	return &CircuitBreaker{config: config, state: StateClosed, logger: logger}
}

// Execute runs fn unless the breaker is open. Results feed the state
// machine: failures trip it, successes in half-open close it.
func (cb *CircuitBreaker) Execute(_ context.Context, fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailure) <= cb.config.Timeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.logger.Infof("[%s] circuit breaker half-open, probing", cb.config.Name)
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailure = time.Now()
		if cb.state == StateHalfOpen || cb.failures >= cb.config.MaxFailures {
			if cb.state != StateOpen {
				cb.logger.Warnf("[%s] circuit breaker opened after %d failures", cb.config.Name, cb.failures)
			}
			cb.state = StateOpen
		}
		return
	}

	cb.failures = 0
	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.logger.Infof("[%s] circuit breaker closed", cb.config.Name)
		}
	case StateOpen:
		cb.state = StateClosed
	}
}
