// Package retry implements the bounded exponential backoff policy used by
// the batch pipeline.
package retry

import (
	"context"
	"time"
)

// SleepFunc waits for a delay. Injectable so tests run without real sleeps.
type SleepFunc func(ctx context.Context, d time.Duration)

// Policy describes a bounded retry with exponential backoff. The delay after
// attempt n (zero-based) is BaseDelay * Multiplier^n; the policy sleeps after
// every failed attempt, the last one included, so a failing batch still backs
// off before the caller moves on.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  int

	// Sleep defaults to a context-aware sleep when nil.
	Sleep SleepFunc

	// OnFailure is called after each failed attempt, before the backoff
	// sleep. Optional.
	OnFailure func(attempt int, delay time.Duration, err error)
}

// Default returns the pipeline's standard policy: 1s base delay doubling per
// attempt.
func Default(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

// Delay returns the backoff delay after the given zero-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i <= attempt; i++ {
		d *= time.Duration(p.Multiplier)
	}
	return d
}

// Do runs fn up to MaxAttempts times, sleeping the backoff delay after each
// failure. It returns nil as soon as fn succeeds, the last error once the
// attempts are exhausted, or the context error if the context ends first.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			// The context ended mid-attempt; backing off would only
			// delay the caller's shutdown
			return lastErr
		}

		delay := p.Delay(attempt)
		if p.OnFailure != nil {
			p.OnFailure(attempt, delay, lastErr)
		}
		sleep(ctx, delay)
	}
	return lastErr
}

// sleepContext sleeps for d or until the context ends.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
