package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func quickPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:      maxAttempts,
		InitialBackoff:   time.Millisecond,
		RateLimitBackoff: time.Millisecond,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), quickPolicy(3), func(error) Action { return Retry }, func() (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), quickPolicy(3), func(error) Action { return Retry }, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errBoom
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), quickPolicy(5), func(error) Action { return Stop }, func() (int, error) {
		calls++
		return 0, errBoom
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var perm *PermanentError
	require.ErrorAs(t, err, &perm)
	assert.ErrorIs(t, err, errBoom)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), quickPolicy(3), func(error) Action { return Retry }, func() (int, error) {
		calls++
		return 0, errBoom
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errBoom)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3, InitialBackoff: time.Minute}
	_, err := Do(ctx, p, func(error) Action { return Retry }, func() (int, error) {
		return 0, errBoom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoRateLimitedUsesLongerBackoff(t *testing.T) {
	var backoffs []time.Duration
	p := Policy{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		RateLimitBackoff: 5 * time.Millisecond,
		OnRetry: func(_ int, _ error, backoff time.Duration) {
			backoffs = append(backoffs, backoff)
		},
	}

	_, _ = Do(context.Background(), p, func(error) Action { return After }, func() (int, error) {
		return 0, errBoom
	})

	require.Len(t, backoffs, 2)
	assert.Equal(t, 5*time.Millisecond, backoffs[0])
	assert.Equal(t, 5*time.Millisecond, backoffs[1])
}

func TestDoCallsOnRetry(t *testing.T) {
	var attempts []int
	p := quickPolicy(3)
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Do(context.Background(), p, func(error) Action { return Retry }, func() (int, error) {
		return 0, errBoom
	})

	assert.Equal(t, []int{1, 2}, attempts)
}
