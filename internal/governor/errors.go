package governor

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimited means no token became available within the allowed wait.
	// Retrying later is safe.
	ErrRateLimited = errors.New("rate limited, try later")

	// ErrQuotaExceeded means the call would overdraw the daily quota.
	// Callers should stop retrying until the quota window resets.
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrCancelled means the caller aborted before the call completed.
	ErrCancelled = errors.New("cancelled")
)

// QuotaError reports a rejected reservation together with the next reset time.
type QuotaError struct {
	Kind      string
	Units     int
	Remaining int
	ResetAt   time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: %s needs %d units, %d remaining, resets at %s",
		ErrQuotaExceeded, e.Kind, e.Units, e.Remaining, e.ResetAt.Format(time.RFC3339))
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// Cancelled wraps a context error so both errors.Is(err, ErrCancelled) and
// errors.Is(err, context.Canceled) hold.
func Cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// IsRetryable reports whether err is a governance condition that clears on its own.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
