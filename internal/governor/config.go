package governor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is everything the Governor needs at construction.
type Config struct {
	DailyQuotaLimit      int                      `validate:"gt=0"`
	RequestsPerSecond    float64                  `validate:"gt=0"`
	RateBurst            int                      `validate:"gte=0"` // 0 = ceil(RequestsPerSecond)
	RateMaxWait          time.Duration            `validate:"gte=0"` // 0 = wait as long as ctx allows
	QuotaLocation        *time.Location           `validate:"-"`     // nil = UTC
	CacheEnabled         bool
	CacheTTL             time.Duration            `validate:"gt=0"`
	CacheMaxEntries      int                      `validate:"gt=0"`
	CacheCleanupInterval time.Duration            `validate:"gte=0"`
	KindTTL              map[string]time.Duration `validate:"omitempty,dive,gt=0"`
	CoalesceMisses       bool
	BatchConcurrency     int                      `validate:"gt=0"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		DailyQuotaLimit:      10000,
		RequestsPerSecond:    10.0,
		RateMaxWait:          30 * time.Second,
		QuotaLocation:        time.UTC,
		CacheEnabled:         true,
		CacheTTL:             time.Hour,
		CacheMaxEntries:      1000,
		CacheCleanupInterval: 5 * time.Minute,
		BatchConcurrency:     5,
	}
}

// burst resolves the bucket capacity.
func (c Config) burst() int {
	if c.RateBurst > 0 {
		return c.RateBurst
	}
	return max(1, int(math.Ceil(c.RequestsPerSecond)))
}

func (c Config) location() *time.Location {
	if c.QuotaLocation == nil {
		return time.UTC
	}
	return c.QuotaLocation
}

var validate = validator.New()

// Validate checks field constraints and returns a *ValidationError on failure.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newValidationError(verrs)
		}
		return err
	}
	return nil
}

// ValidationError lists invalid config fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid governor config: %v", e.Fields)
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "gt":
			fields[fe.Field()] = fmt.Sprintf("must be greater than %s", fe.Param())
		case "gte":
			fields[fe.Field()] = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
		default:
			fields[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}
