// Package governor mediates calls to a quota-limited, rate-limited remote API.
//
// A Governor owns one Cache, one RateLimiter and one QuotaTracker and exposes a
// single Execute entry point: cache lookup, token wait, quota reservation, remote
// call, cache store. It never retries; retry policy belongs to the caller.
package governor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Operation describes one governed call.
type Operation struct {
	Kind     string // selects the cache TTL and labels usage
	Cost     int    // quota units spent when the remote call is made
	CacheKey string // empty = never cached
}

// RemoteCall performs the actual request. It must honour ctx.
type RemoteCall func(ctx context.Context) (any, error)

// UsageRecord is one successful quota reservation.
type UsageRecord struct {
	Kind  string
	Units int
	At    time.Time
}

// UsageRecorder receives every reservation. Errors are logged, never returned to callers.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, rec UsageRecord) error
}

// Governor wraps caching, throttling and quota accounting around remote calls.
// Safe for concurrent use.
type Governor struct {
	cfg      Config
	clock    clockwork.Clock
	cache    *Cache
	limiter  *RateLimiter
	quota    *QuotaTracker
	inflight singleflight.Group
	recorder UsageRecorder
	stats    counters
}

// Option customises a Governor.
type Option func(*Governor)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(g *Governor) { g.clock = c }
}

// WithUsageRecorder attaches a usage journal.
func WithUsageRecorder(r UsageRecorder) Option {
	return func(g *Governor) { g.recorder = r }
}

// New validates cfg and builds a Governor.
func New(cfg Config, opts ...Option) (*Governor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Governor{cfg: cfg, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(g)
	}
	g.cache = NewCache(g.clock, cfg.CacheMaxEntries, cfg.CacheEnabled)
	g.limiter = NewRateLimiter(g.clock, cfg.RequestsPerSecond, cfg.burst(), cfg.RateMaxWait)
	g.quota = NewQuotaTracker(g.clock, cfg.DailyQuotaLimit, cfg.location())

	slog.Info("governor: initialized",
		slog.Int("daily_quota", cfg.DailyQuotaLimit),
		slog.Float64("rps", cfg.RequestsPerSecond),
		slog.Int("burst", cfg.burst()),
		slog.Bool("cache", cfg.CacheEnabled),
		slog.Duration("cache_ttl", cfg.CacheTTL),
		slog.Int("cache_max_entries", cfg.CacheMaxEntries),
		slog.Bool("coalesce", cfg.CoalesceMisses),
	)
	return g, nil
}

// Start runs background maintenance until ctx is cancelled.
func (g *Governor) Start(ctx context.Context) {
	if g.cfg.CacheEnabled {
		go g.cache.RunJanitor(ctx, g.cfg.CacheCleanupInterval)
	}
}

// Execute runs fn under the governance policy.
//
// A cache hit returns immediately and spends neither tokens nor quota. A miss
// waits for a token (ErrRateLimited / ErrCancelled), reserves op.Cost units
// (*QuotaError, fn not invoked) and then calls fn. Errors from fn are returned
// unchanged and the reserved units are not refunded. Successful results are
// cached under op.CacheKey.
func (g *Governor) Execute(ctx context.Context, op Operation, fn RemoteCall) (any, error) {
	g.stats.Executions.Add(1)
	if op.Cost < 0 {
		return nil, fmt.Errorf("governor: negative cost %d for %s", op.Cost, op.Kind)
	}

	if op.CacheKey != "" {
		if v, ok := g.cache.Get(op.CacheKey); ok {
			g.stats.CacheHits.Add(1)
			slog.Debug("governor: cache hit", slog.String("kind", op.Kind), slog.String("key", op.CacheKey))
			return v, nil
		}
		if g.cfg.CoalesceMisses {
			return g.coalesced(ctx, op, fn)
		}
	}
	return g.miss(ctx, op, fn)
}

// coalesced joins the in-flight miss for op.CacheKey. The flight runs under the
// first caller's ctx; every caller still returns as soon as its own ctx ends.
// A caller whose flight died of someone else's cancellation runs its own miss.
func (g *Governor) coalesced(ctx context.Context, op Operation, fn RemoteCall) (any, error) {
	ch := g.inflight.DoChan(op.CacheKey, func() (any, error) {
		return g.miss(ctx, op, fn)
	})
	select {
	case res := <-ch:
		if res.Shared {
			g.stats.Coalesced.Add(1)
		}
		if isCancellation(res.Err) && ctx.Err() == nil {
			slog.Debug("governor: shared miss cancelled, retrying alone", slog.String("kind", op.Kind))
			return g.miss(ctx, op, fn)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		g.stats.Cancelled.Add(1)
		return nil, Cancelled(ctx.Err())
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (g *Governor) miss(ctx context.Context, op Operation, fn RemoteCall) (any, error) {
	if err := g.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrCancelled) {
			g.stats.Cancelled.Add(1)
		} else {
			g.stats.RateLimited.Add(1)
			slog.Debug("governor: rate limited", slog.String("kind", op.Kind), slog.Any("error", err))
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		g.stats.Cancelled.Add(1)
		return nil, Cancelled(err)
	}

	if !g.quota.TryReserve(op.Cost) {
		g.stats.QuotaExceeded.Add(1)
		qs := g.quota.Stats()
		slog.Warn("governor: quota exceeded",
			slog.String("kind", op.Kind),
			slog.Int("cost", op.Cost),
			slog.Int("remaining", qs.Remaining),
			slog.Time("reset_at", qs.ResetAt),
		)
		return nil, &QuotaError{Kind: op.Kind, Units: op.Cost, Remaining: qs.Remaining, ResetAt: qs.ResetAt}
	}
	g.recordUsage(ctx, op)

	g.stats.RemoteCalls.Add(1)
	v, err := fn(ctx)
	if err != nil {
		g.stats.RemoteErrors.Add(1)
		return nil, err
	}
	if op.CacheKey != "" {
		g.cache.Put(op.CacheKey, v, g.ttlFor(op.Kind))
	}
	return v, nil
}

func (g *Governor) recordUsage(ctx context.Context, op Operation) {
	if g.recorder == nil || op.Cost == 0 {
		return
	}
	rec := UsageRecord{Kind: op.Kind, Units: op.Cost, At: g.clock.Now()}
	if err := g.recorder.RecordUsage(context.WithoutCancel(ctx), rec); err != nil {
		slog.Warn("governor: usage journal write failed", slog.String("kind", op.Kind), slog.Any("error", err))
	}
}

func (g *Governor) ttlFor(kind string) time.Duration {
	if ttl, ok := g.cfg.KindTTL[kind]; ok {
		return ttl
	}
	return g.cfg.CacheTTL
}

// Do is Execute for a typed result.
func Do[T any](ctx context.Context, g *Governor, op Operation, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := g.Execute(ctx, op, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("governor: value for %q is %T, want %T", op.CacheKey, v, zero)
	}
	return out, nil
}

// Stats aggregates cache, quota, rate and execution diagnostics.
type Stats struct {
	Cache CacheStats `json:"cache"`
	Quota QuotaStats `json:"quota"`
	Rate  RateStats  `json:"rate_limiter"`
	Exec  ExecStats  `json:"executions"`
}

// Stats returns a snapshot for health reporting.
func (g *Governor) Stats() Stats {
	return Stats{
		Cache: g.cache.Stats(),
		Quota: g.quota.Stats(),
		Rate:  g.limiter.Stats(),
		Exec:  g.stats.snapshot(),
	}
}

// ClearCache drops all cached responses.
func (g *Governor) ClearCache() {
	g.cache.Clear()
	slog.Info("governor: cache cleared")
}

// ResetQuota empties the quota ledger.
func (g *Governor) ResetQuota() {
	g.quota.Reset()
	slog.Info("governor: quota reset")
}

// Config returns the configuration the Governor was built with.
func (g *Governor) Config() Config {
	return g.cfg
}
