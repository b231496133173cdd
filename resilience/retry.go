package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy describes how an operation is retried. The zero value makes three
// attempts with exponential backoff from 100ms.
type Policy struct {
	// Attempts is the total number of calls, the first included.
	Attempts int
	// Initial is the wait after the first failure.
	Initial time.Duration
	// Max caps a single wait.
	Max time.Duration
	// Factor multiplies the wait after each failure.
	Factor float64
	// Jitter spreads each wait by up to this fraction in either direction.
	Jitter float64
	// RetryIf decides whether an error is worth another attempt. Defaults to
	// everything except context cancellation.
	RetryIf func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ExhaustedError is returned once every attempt has failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Retryable is the default RetryIf.
func Retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Initial <= 0 {
		p.Initial = 100 * time.Millisecond
	}
	if p.Max <= 0 {
		p.Max = 10 * time.Second
	}
	if p.Factor < 1 {
		p.Factor = 2
	}
	if p.RetryIf == nil {
		p.RetryIf = Retryable
	}
	return p
}

// Wait returns the pause after the given failed attempt (1-based).
func (p Policy) Wait(attempt int) time.Duration {
	p = p.withDefaults()
	wait := float64(p.Initial)
	for range attempt - 1 {
		wait *= p.Factor
		if wait >= float64(p.Max) {
			break
		}
	}
	if p.Jitter > 0 {
		wait += wait * p.Jitter * (rand.Float64()*2 - 1)
	}
	return min(time.Duration(wait), p.Max)
}

// Retry calls fn until it succeeds, returns an error RetryIf rejects, runs
// out of attempts or ctx is done. A non-retryable error is returned as is.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	var zero T
	var last error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !p.RetryIf(err) {
			return zero, err
		}
		last = err
		if attempt == p.Attempts {
			break
		}

		wait := p.Wait(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, &ExhaustedError{Attempts: p.Attempts, Last: last}
}

// Do is Retry for operations without a result.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := Retry(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
