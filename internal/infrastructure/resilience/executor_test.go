package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts:  attempts,
		BaseDelay: time.Millisecond,
		MaxDelay:  2 * time.Millisecond,
		Factor:    2,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(Config{Retry: fastRetry(3)})

	errFlaky := errors.New("flaky")
	calls := 0
	err := exec.Do(context.Background(), "oracle.generate", func(err error) Outcome {
		return Outcome{Retry: errors.Is(err, errFlaky), CountFailure: true}
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	exec := NewExecutor(Config{Retry: fastRetry(3)})

	errPermanent := errors.New("bad request")
	calls := 0
	err := exec.Do(context.Background(), "oracle.generate", func(error) Outcome {
		return Outcome{Retry: false, CountFailure: false}
	}, func(context.Context) error {
		calls++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoOpensBreakerAfterRepeatedFailures(t *testing.T) {
	exec := NewExecutor(Config{
		Retry: fastRetry(1),
		Breaker: BreakerPolicy{
			Enabled:        true,
			MinSamples:     2,
			TripRatio:      0.5,
			CooldownPeriod: 50 * time.Millisecond,
			ProbeRequests:  1,
		},
	})

	errDown := errors.New("upstream down")
	classify := func(error) Outcome {
		return Outcome{Retry: false, CountFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Do(context.Background(), "oracle.generate", classify, func(context.Context) error {
			return errDown
		})
		if !errors.Is(err, errDown) {
			t.Fatalf("iteration %d: expected upstream error, got %v", i, err)
		}
	}

	err := exec.Do(context.Background(), "oracle.generate", classify, func(context.Context) error {
		t.Fatalf("open breaker must not invoke the operation")
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-state error, got %v", err)
	}
}

func TestDoKeepsBreakersPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		Retry: fastRetry(1),
		Breaker: BreakerPolicy{
			Enabled:        true,
			MinSamples:     2,
			TripRatio:      0.5,
			CooldownPeriod: 50 * time.Millisecond,
			ProbeRequests:  1,
		},
	})

	errDown := errors.New("upstream down")
	classify := func(error) Outcome {
		return Outcome{Retry: false, CountFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Do(context.Background(), "oracle.classify", classify, func(context.Context) error {
			return errDown
		})
	}

	// The classify breaker is open; generate must still go through.
	err := exec.Do(context.Background(), "oracle.generate", classify, func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("sibling operation must be unaffected, got %v", err)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	exec := NewExecutor(Config{Retry: fastRetry(5)})

	ctx, cancel := context.WithCancel(context.Background())
	errFlaky := errors.New("flaky")
	calls := 0
	err := exec.Do(ctx, "oracle.generate", func(error) Outcome {
		return Outcome{Retry: true, CountFailure: true}
	}, func(context.Context) error {
		calls++
		cancel()
		return errFlaky
	})
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("cancelled context must stop retrying, got %d calls", calls)
	}
}
