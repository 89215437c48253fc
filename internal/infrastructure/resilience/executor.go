package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Outcome classifies an operation error for the retry loop and the breaker.
type Outcome struct {
	Retry        bool
	CountFailure bool
}

type Classifier func(err error) Outcome

// Executor wraps calls to a flaky dependency with bounded retries and a
// per-operation circuit breaker.
type Executor struct {
	policy Policy

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(policy Policy) *Executor {
	return &Executor{
		policy:   policy.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (e *Executor) Do(ctx context.Context, operation string, classify Classifier, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: nil operation callback")
	}
	if operation == "" {
		operation = "unknown"
	}
	if classify == nil {
		classify = func(error) Outcome { return Outcome{CountFailure: true} }
	}

	if !e.policy.BreakerEnabled {
		return e.retry(ctx, operation, classify, fn)
	}

	breaker := e.breakerFor(operation, classify)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.retry(ctx, operation, classify, fn)
	})
	return err
}

func (e *Executor) retry(ctx context.Context, operation string, classify Classifier, fn func(context.Context) error) error {
	wait := e.policy.InitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= e.policy.MaxAttempts || !classify(err).Retry {
			return err
		}

		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.policy.MaxAttempts,
			"backoff", wait.String(),
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		wait = time.Duration(float64(wait) * e.policy.BackoffFactor)
		if wait > e.policy.MaxBackoff {
			wait = e.policy.MaxBackoff
		}
	}
}

func (e *Executor) breakerFor(operation string, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.policy.BreakerProbeCalls,
		Timeout:     e.policy.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.policy.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.policy.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).CountFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
