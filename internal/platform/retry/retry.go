// Package retry runs an operation until it succeeds, the caller's
// classifier declares the error permanent, or the attempt budget runs
// out.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Action is the classifier's verdict on a failed attempt.
type Action int

const (
	Stop  Action = iota // give up, the error will not heal
	Retry               // try again with exponential backoff
	After               // upstream asked to slow down, back off harder
)

// Policy bundles the attempt budget and backoff timings. The
// exponential backoff starts at InitialBackoff and doubles per
// attempt; a rate-limited attempt restarts doubling from
// RateLimitBackoff instead.
type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration

	// OnRetry is called before each backoff sleep, not after the
	// final failure.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// Classify maps an error to the action to take on it.
type Classify func(err error) Action

// Do runs op up to p.MaxAttempts times. A Stop verdict returns the
// error wrapped in PermanentError; context cancellation cuts the
// backoff sleep short.
func Do[T any](ctx context.Context, p Policy, classify Classify, op func() (T, error)) (T, error) {
	backoff := p.InitialBackoff

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		action := classify(err)
		if action == Stop {
			var zero T
			return zero, &PermanentError{Err: err}
		}

		if attempt == p.MaxAttempts {
			var zero T
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if action == After {
			backoff = p.RateLimitBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			var zero T
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	panic("unreachable: MaxAttempts must be >= 1")
}

// PermanentError marks an error the classifier declared not worth
// retrying.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
