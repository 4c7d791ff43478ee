package governor

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// QuotaTracker accounts for a daily unit budget.
// The window rolls over at midnight in loc; reserving is the same step as spending.
type QuotaTracker struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	loc         *time.Location
	dailyLimit  int
	used        int
	windowStart time.Time // midnight in loc
}

// QuotaStats is a snapshot of the ledger.
type QuotaStats struct {
	DailyLimit  int       `json:"daily_limit"`
	Used        int       `json:"used"`
	Remaining   int       `json:"remaining"`
	WindowStart time.Time `json:"window_start"`
	ResetAt     time.Time `json:"reset_at"`
}

// NewQuotaTracker creates a tracker with an empty ledger for the current day.
func NewQuotaTracker(clock clockwork.Clock, dailyLimit int, loc *time.Location) *QuotaTracker {
	if loc == nil {
		loc = time.UTC
	}
	q := &QuotaTracker{clock: clock, loc: loc, dailyLimit: dailyLimit}
	q.windowStart = q.dayStart(clock.Now())
	return q
}

func (q *QuotaTracker) dayStart(t time.Time) time.Time {
	t = t.In(q.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, q.loc)
}

// rollover resets the ledger when the clock has entered a new day. Caller holds q.mu.
func (q *QuotaTracker) rollover() {
	if today := q.dayStart(q.clock.Now()); !today.Equal(q.windowStart) {
		q.used = 0
		q.windowStart = today
	}
}

// TryReserve spends units if the budget allows it. On false nothing changes.
func (q *QuotaTracker) TryReserve(units int) bool {
	if units < 0 {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.used+units > q.dailyLimit {
		return false
	}
	q.used += units
	return true
}

// Remaining returns the units left in the current day.
func (q *QuotaTracker) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.dailyLimit - q.used
}

// Reset empties the ledger and restarts the window at today's boundary.
func (q *QuotaTracker) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.used = 0
	q.windowStart = q.dayStart(q.clock.Now())
}

// ResetAt returns when the current window ends.
func (q *QuotaTracker) ResetAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.windowStart.AddDate(0, 0, 1)
}

// Stats returns the ledger after applying any pending rollover.
func (q *QuotaTracker) Stats() QuotaStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return QuotaStats{
		DailyLimit:  q.dailyLimit,
		Used:        q.used,
		Remaining:   q.dailyLimit - q.used,
		WindowStart: q.windowStart,
		ResetAt:     q.windowStart.AddDate(0, 0, 1),
	}
}
