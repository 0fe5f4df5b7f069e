package errors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}
}

func TestRetryWithResult_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := RetryWithResult(context.Background(), fastRetry(2), func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestRetryWithResult_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := RetryWithResult(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", New(ErrCodeOracleUnavailable, "down", nil)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetryWithResult_ExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := RetryWithResult(context.Background(), fastRetry(2), func() (int, error) {
		calls++
		return 0, New(ErrCodeOracleTimeout, "slow", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.ErrorIs(t, err, New(ErrCodeOracleTimeout, "", nil))
}

func TestRetryWithResult_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := RetryWithResult(context.Background(), fastRetry(5), func() (int, error) {
		calls++
		return 0, New(ErrCodeBudgetExceeded, "quota gone", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryWithResult(ctx, fastRetry(2), func() (int, error) {
		return 0, New(ErrCodeOracleUnavailable, "down", nil)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithResult_DelayCappedAtMax(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   10.0,
		Jitter:       false,
	}

	start := time.Now()
	calls := 0
	_, err := RetryWithResult(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, New(ErrCodeOracleUnavailable, "down", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	// 1ms + 2ms + 2ms of waiting; anything near a second means the cap failed.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
