package governor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket driven by an injectable clock.
//
// Every Acquire reserves the next available slot while holding the lock, so
// concurrent waiters are granted in arrival order.
type RateLimiter struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	latestNow time.Time // never allowed to rewind
	limiter   *rate.Limiter
	maxWait   time.Duration
}

// RateStats describes the bucket.
type RateStats struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
	Tokens            float64 `json:"tokens"`
	Reserved          float64 `json:"reserved"` // slots promised to blocked waiters
}

// NewRateLimiter creates a bucket of capacity burst refilled at rps tokens per second.
// The bucket starts full. maxWait bounds how long Acquire may block (0 = no bound).
func NewRateLimiter(clock clockwork.Clock, rps float64, burst int, maxWait time.Duration) *RateLimiter {
	r := &RateLimiter{
		clock:   clock,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		maxWait: maxWait,
	}
	// Anchor the refill timestamp to the injected clock.
	r.limiter.SetBurstAt(clock.Now(), burst)
	return r
}

func (r *RateLimiter) lockNow() (time.Time, func()) {
	r.mu.Lock()
	if now := r.clock.Now(); now.After(r.latestNow) {
		r.latestNow = now
	}
	return r.latestNow, r.mu.Unlock
}

// TryAcquire takes a token if one is available right now.
func (r *RateLimiter) TryAcquire() bool {
	now, unlock := r.lockNow()
	defer unlock()
	return r.limiter.AllowN(now, 1)
}

// Acquire blocks until a token is granted.
//
// It returns ErrRateLimited without waiting when the token cannot arrive before
// the context deadline or within maxWait, and ErrCancelled when ctx ends while
// waiting. In both cases the reserved slot is handed back to the bucket.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return Cancelled(err)
	}

	now, unlock := r.lockNow()
	res := r.limiter.ReserveN(now, 1)
	if !res.OK() {
		unlock()
		return fmt.Errorf("%w: bucket cannot grant a token", ErrRateLimited)
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		unlock()
		return nil
	}
	if r.maxWait > 0 && delay > r.maxWait {
		res.CancelAt(now)
		unlock()
		return fmt.Errorf("%w: next token in %s exceeds max wait %s", ErrRateLimited, delay, r.maxWait)
	}
	// ctx deadlines are wall-clock, so compare durations rather than instants.
	if deadline, ok := ctx.Deadline(); ok && delay > time.Until(deadline) {
		res.CancelAt(now)
		unlock()
		return fmt.Errorf("%w: next token in %s is past the deadline", ErrRateLimited, delay)
	}
	unlock()

	timer := r.clock.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		now, unlock := r.lockNow()
		res.CancelAt(now)
		unlock()
		return Cancelled(ctx.Err())
	}
}

// level is the raw bucket level; it goes negative while waiters hold
// reservations for future slots.
func (r *RateLimiter) level() float64 {
	now, unlock := r.lockNow()
	defer unlock()
	return r.limiter.TokensAt(now)
}

// Tokens reports the tokens available right now, in [0, burst].
func (r *RateLimiter) Tokens() float64 {
	return max(r.level(), 0)
}

// Stats returns the configured rate, burst, current level and the slots
// already promised to waiters.
func (r *RateLimiter) Stats() RateStats {
	lvl := r.level()
	return RateStats{
		RequestsPerSecond: float64(r.limiter.Limit()),
		Burst:             r.limiter.Burst(),
		Tokens:            max(lvl, 0),
		Reserved:          max(-lvl, 0),
	}
}
