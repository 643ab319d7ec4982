// Package httpx holds the shared HTTP plumbing for provider clients: a pooled
// client, connection warm-up, and retry with exponential backoff.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var (
	clientOnce sync.Once
	client     *http.Client
)

// Client returns the process-wide pooled HTTP client. Connections are kept
// alive across pipeline runs so the TLS handshake done during the hold window
// is still warm when transcription fires.
func Client() *http.Client {
	clientOnce.Do(func() {
		client = &http.Client{
			Timeout: 90 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     300 * time.Second,
			},
		}
	})
	return client
}

// Warmup issues a lightweight GET to pre-establish the TLS connection to a
// provider endpoint. The response body is discarded; only the handshake
// matters.
func Warmup(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := Client().Do(req)
	if err != nil {
		return fmt.Errorf("warmup %s: %w", url, err)
	}
	resp.Body.Close()
	return nil
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient so Do will retry it.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked by Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// RetryableStatus reports whether an HTTP status warrants a retry:
// 429 for rate limiting, 5xx for transient server trouble.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// baseBackoff is the first retry delay; attempt n waits baseBackoff * 2^n.
var baseBackoff = time.Second

// Do runs op up to maxAttempts times, backing off exponentially between
// retryable failures. Non-retryable errors fail immediately. The context
// aborts both the operation and any pending backoff sleep.
func Do[T any](ctx context.Context, maxAttempts int, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		return zero, errors.New("maxAttempts must be at least 1")
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt < maxAttempts-1 {
			backoff := baseBackoff << attempt
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, fmt.Errorf("retries exceeded: %w", lastErr)
}
