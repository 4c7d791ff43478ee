package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

var (
	// ErrInvalidURL means no id of the requested kind could be extracted.
	ErrInvalidURL = errors.New("invalid youtube url")
	// ErrNotFound means the Data API returned no item for an id.
	ErrNotFound = errors.New("not found")
	// ErrMissingAPIKey is returned by NewClient without a key.
	ErrMissingAPIKey = errors.New("youtube api key is not configured")
	// ErrInvalidArgument rejects a request before any quota is spent.
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError is a non-2xx Data API response.
type APIError struct {
	StatusCode int
	Reason     string // first errors[].reason, e.g. "commentsDisabled"
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Reason != "" {
		return fmt.Sprintf("youtube api %d (%s): %s", e.StatusCode, e.Reason, msg)
	}
	return fmt.Sprintf("youtube api %d: %s", e.StatusCode, msg)
}

// Is lets a server-side quota rejection match governor.ErrQuotaExceeded.
func (e *APIError) Is(target error) bool {
	return target == governor.ErrQuotaExceeded && e.quotaExhausted()
}

func (e *APIError) quotaExhausted() bool {
	switch e.Reason {
	case "quotaExceeded", "dailyLimitExceeded":
		return true
	}
	return false
}

// Temporary reports whether repeating the request may succeed.
func (e *APIError) Temporary() bool {
	if e.quotaExhausted() {
		return false
	}
	return isRetryableStatus(e.StatusCode) || e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded"
}

// apiErrorBody mirrors the Data API error envelope.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func (b apiErrorBody) toError(status int) *APIError {
	e := &APIError{StatusCode: status, Message: b.Error.Message}
	if len(b.Error.Errors) > 0 {
		e.Reason = b.Error.Errors[0].Reason
		if e.Message == "" {
			e.Message = b.Error.Errors[0].Message
		}
	}
	return e
}

// IsCommentsDisabled reports a commentThreads call on a video with comments turned off.
func IsCommentsDisabled(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Reason == "commentsDisabled"
}
