package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// RetryPolicy configures retry behavior for transport-level failures only.
// HTTP status codes, including 5xx and 429, are never retried here: they
// are committed as Pages rather than treated as errors (see Fetcher).
type RetryPolicy struct {
	MaxRetries int           // Maximum number of retries (2 = 3 total attempts)
	BaseDelay  time.Duration // Initial backoff delay
	MaxDelay   time.Duration // Maximum backoff cap
}

// DefaultRetryPolicy returns a RetryPolicy with sensible defaults:
// 2 retries (3 attempts), 1s base delay, 30s max delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// withRetry runs fn up to policy.MaxRetries+1 times with exponential
// backoff, retrying only while fn's error is a retryable transport error.
func withRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	backoff := policy.BaseDelay
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff = min(backoff*2, policy.MaxDelay)
			}
		}

		lastErr = fn()
		if lastErr == nil || !isRetryableError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// isRetryableError reports whether err indicates a transient transport
// failure (timeout, connection-level error, DNS failure) worth retrying.
// A connection closed before a response arrives surfaces as io.EOF or
// io.ErrUnexpectedEOF and counts as a connection-level error.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
