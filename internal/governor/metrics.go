package governor

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// counters tracks Execute outcomes. Atomic so the hot path takes no lock.
type counters struct {
	Executions    atomic.Int64
	CacheHits     atomic.Int64
	RemoteCalls   atomic.Int64
	RemoteErrors  atomic.Int64
	RateLimited   atomic.Int64
	QuotaExceeded atomic.Int64
	Cancelled     atomic.Int64
	Coalesced     atomic.Int64
}

// ExecStats is a snapshot of the Execute counters.
type ExecStats struct {
	Executions    int64 `json:"executions"`
	CacheHits     int64 `json:"cache_hits"`
	RemoteCalls   int64 `json:"remote_calls"`
	RemoteErrors  int64 `json:"remote_errors"`
	RateLimited   int64 `json:"rate_limited"`
	QuotaExceeded int64 `json:"quota_exceeded"`
	Cancelled     int64 `json:"cancelled"`
	Coalesced     int64 `json:"coalesced"`
}

func (c *counters) snapshot() ExecStats {
	return ExecStats{
		Executions:    c.Executions.Load(),
		CacheHits:     c.CacheHits.Load(),
		RemoteCalls:   c.RemoteCalls.Load(),
		RemoteErrors:  c.RemoteErrors.Load(),
		RateLimited:   c.RateLimited.Load(),
		QuotaExceeded: c.QuotaExceeded.Load(),
		Cancelled:     c.Cancelled.Load(),
		Coalesced:     c.Coalesced.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func (g *Governor) FormatMetrics() string {
	s := g.Stats()
	var sb strings.Builder
	lines := []struct {
		name  string
		value any
	}{
		{"governor_executions", s.Exec.Executions},
		{"governor_remote_calls", s.Exec.RemoteCalls},
		{"governor_remote_errors", s.Exec.RemoteErrors},
		{"governor_rate_limited", s.Exec.RateLimited},
		{"governor_quota_exceeded", s.Exec.QuotaExceeded},
		{"governor_cancelled", s.Exec.Cancelled},
		{"governor_coalesced", s.Exec.Coalesced},
		{"cache_hits", s.Cache.Hits},
		{"cache_misses", s.Cache.Misses},
		{"cache_size", s.Cache.Size},
		{"quota_used", s.Quota.Used},
		{"quota_remaining", s.Quota.Remaining},
		{"rate_tokens", fmt.Sprintf("%.3f", s.Rate.Tokens)},
		{"rate_reserved", fmt.Sprintf("%.3f", s.Rate.Reserved)},
	}
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s %v\n", l.name, l.value)
	}
	return sb.String()
}
