package youtube

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig is suitable for Data API calls.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// backoff is the wait before retry number attempt+1.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	wait := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
	return min(wait, rc.MaxWait)
}

// RetryDo calls fn until it succeeds, fails permanently or MaxRetries retries
// are used up. Only transient failures are retried; quota exhaustion, client
// errors and cancellation return at once. A context that ends between attempts
// yields an error matching governor.ErrCancelled.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, governor.Cancelled(err)
		}
		v, err := fn()
		switch {
		case err == nil:
			return v, nil
		case attempt >= rc.MaxRetries || !isRetryable(err):
			return zero, err
		}

		wait := rc.backoff(attempt)
		slog.Debug("youtube: retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return zero, governor.Cancelled(ctx.Err())
		}
	}
}

// isRetryable returns true for transient errors worth retrying.
func isRetryable(err error) bool {
	if errors.Is(err, governor.ErrQuotaExceeded) || errors.Is(err, governor.ErrCancelled) {
		return false
	}
	if governor.IsRetryable(err) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	// Connection errors (dial failures, connection refused, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// isRetryableStatus returns true for HTTP status codes worth retrying.
func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
