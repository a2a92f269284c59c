package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Outcome is a classifier's verdict on a single failure: whether the
// call may be retried and whether the breaker should count it.
type Outcome struct {
	Retry        bool
	CountFailure bool
}

type Classifier func(err error) Outcome

// Executor wraps an operation in a bounded retry loop behind a
// per-operation circuit breaker. Breakers are keyed by operation name
// and created lazily on first use.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (e *Executor) Do(ctx context.Context, operation string, classify Classifier, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classify == nil {
		classify = neverRetry
	}

	if !e.cfg.Breaker.Enabled {
		return e.retryLoop(ctx, op, classify, fn)
	}

	breaker := e.breakerFor(op, classify)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.retryLoop(ctx, op, classify, fn)
	})
	return err
}

func (e *Executor) retryLoop(ctx context.Context, op string, classify Classifier, fn func(context.Context) error) error {
	delay := e.cfg.Retry.BaseDelay

	for attempt := 1; attempt <= e.cfg.Retry.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		verdict := classify(err)
		if !verdict.Retry || attempt == e.cfg.Retry.Attempts {
			return err
		}

		wait := delay
		if wait > e.cfg.Retry.MaxDelay {
			wait = e.cfg.Retry.MaxDelay
		}
		slog.Warn("retrying_operation",
			"op", op,
			"attempt", attempt,
			"of", e.cfg.Retry.Attempts,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}

		delay = time.Duration(float64(delay) * e.cfg.Retry.Factor)
		if delay > e.cfg.Retry.MaxDelay {
			delay = e.cfg.Retry.MaxDelay
		}
	}

	return nil
}

func (e *Executor) breakerFor(op string, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[op]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        op,
		MaxRequests: e.cfg.Breaker.ProbeRequests,
		Timeout:     e.cfg.Breaker.CooldownPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.Breaker.MinSamples {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= e.cfg.Breaker.TripRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !classify(err).CountFailure
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("breaker_state_change", "op", name, "from", from.String(), "to", to.String())
		},
	}

	breaker := gobreaker.NewCircuitBreaker[any](settings)
	e.breakers[op] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func neverRetry(error) Outcome {
	return Outcome{Retry: false, CountFailure: true}
}
