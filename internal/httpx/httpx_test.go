package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	old := baseBackoff
	baseBackoff = time.Millisecond
	t.Cleanup(func() { baseBackoff = old })
}

func TestDoSuccessFirstAttempt(t *testing.T) {
	fastBackoff(t)

	calls := 0
	got, err := Do(context.Background(), 3, func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoSuccessAfterRetries(t *testing.T) {
	fastBackoff(t)

	calls := 0
	got, err := Do(context.Background(), 3, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", Retryable(errors.New("server hiccup"))
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoNonRetryableFailsImmediately(t *testing.T) {
	fastBackoff(t)

	calls := 0
	boom := errors.New("bad request")
	_, err := Do(context.Background(), 3, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesExhausted(t *testing.T) {
	fastBackoff(t)

	calls := 0
	_, err := Do(context.Background(), 3, func(context.Context) (int, error) {
		calls++
		return 0, Retryable(errors.New("still down"))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exceeded")
	assert.Equal(t, 3, calls)
}

func TestDoContextCancelsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Do(ctx, 3, func(context.Context) (int, error) {
		return 0, Retryable(errors.New("down"))
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, RetryableStatus(http.StatusTooManyRequests))
	assert.True(t, RetryableStatus(http.StatusInternalServerError))
	assert.True(t, RetryableStatus(http.StatusBadGateway))
	assert.True(t, RetryableStatus(http.StatusServiceUnavailable))
	assert.True(t, RetryableStatus(http.StatusGatewayTimeout))

	assert.False(t, RetryableStatus(http.StatusOK))
	assert.False(t, RetryableStatus(http.StatusBadRequest))
	assert.False(t, RetryableStatus(http.StatusUnauthorized))
	assert.False(t, RetryableStatus(http.StatusNotFound))
}

func TestIsRetryableWrapping(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Retryable(inner)
	assert.True(t, IsRetryable(wrapped))
	assert.ErrorIs(t, wrapped, inner)
	assert.False(t, IsRetryable(inner))
	assert.Nil(t, Retryable(nil))
}
