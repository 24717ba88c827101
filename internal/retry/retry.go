// Package retry provides bounded retry with exponential backoff and jitter
// for calls against the external translation service. Only transient
// failures are retried; permanent and auth failures return immediately so
// quota is never wasted on unrecoverable inputs.
package retry

import (
	"context"
	"math/rand"
	"time"

	"codeberg.org/snonux/batchlingo/internal/domain"
	"codeberg.org/snonux/batchlingo/internal/translate"
)

// Policy configures retry behaviour for a single operation
type Policy struct {
	MaxAttempts int           // total attempts including the first (default 3)
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // upper bound on a single backoff delay
}

// DefaultPolicy returns the default retry policy
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Outcome reports the result of executing an operation under the policy
type Outcome struct {
	Attempts int   // number of attempts actually made
	Err      error // nil on success, the last failure otherwise
}

// Execute runs op under the policy. Transient failures are retried with
// exponential backoff plus jitter; permanent and auth failures stop
// immediately. Context cancellation aborts the backoff wait.
func (p *Policy) Execute(ctx context.Context, op func(ctx context.Context) error) Outcome {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return Outcome{Attempts: attempt}
		}

		if translate.KindOf(lastErr) != domain.ErrorKindTransient {
			return Outcome{Attempts: attempt, Err: lastErr}
		}

		if attempt == maxAttempts {
			break
		}

		if err := p.wait(ctx, p.backoffDelay(attempt)); err != nil {
			return Outcome{Attempts: attempt, Err: lastErr}
		}
	}

	return Outcome{Attempts: maxAttempts, Err: lastErr}
}

// backoffDelay computes the delay after the given attempt number (1-based):
// BaseDelay doubled per attempt, with ±50% jitter, capped at MaxDelay.
func (p *Policy) backoffDelay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	delay := base << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	// Jitter between 50% and 150% of the computed delay
	jittered := time.Duration(float64(delay) * (0.5 + rand.Float64()))
	if p.MaxDelay > 0 && jittered > p.MaxDelay {
		jittered = p.MaxDelay
	}
	return jittered
}

// wait sleeps for the given duration or until the context is cancelled
func (p *Policy) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
