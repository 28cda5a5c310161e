package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	boom := errors.New("broken config")
	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		return NewFatalError(boom)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "fatal errors must not be retried")
}

func TestRetryExhaustsMaxAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		return NewRetryableError(errors.New("still down"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithCallbackReportsEachAttempt(t *testing.T) {
	var attempts []int
	err := RetryWithCallback(context.Background(), fastPolicy(3), func() error {
		return errors.New("flaky")
	}, func(attempt int, _ error, nextDelay time.Duration) {
		attempts = append(attempts, attempt)
		assert.Positive(t, nextDelay)
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts, "callback fires before each backoff wait, not after the last attempt")
}

func TestRetryHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, fastPolicy(10), func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
