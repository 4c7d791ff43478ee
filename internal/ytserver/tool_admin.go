package ytserver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/governor"
	"github.com/anatolykoptev/go_youtube/internal/toolutil"
	"github.com/anatolykoptev/go_youtube/internal/usagedb"
)

// EmptyInput is the input for tools without parameters.
type EmptyInput struct{}

// QuotaView is the quota window with timestamps rendered as text.
type QuotaView struct {
	DailyLimit  int     `json:"daily_limit"`
	Used        int     `json:"used"`
	Remaining   int     `json:"remaining"`
	UsedPercent float64 `json:"used_percent"`
	WindowStart string  `json:"window_start"`
	ResetAt     string  `json:"reset_at"`
}

func quotaView(s governor.QuotaStats) QuotaView {
	pct := 0.0
	if s.DailyLimit > 0 {
		pct = math.Round(float64(s.Used)/float64(s.DailyLimit)*1000) / 10
	}
	return QuotaView{
		DailyLimit:  s.DailyLimit,
		Used:        s.Used,
		Remaining:   s.Remaining,
		UsedPercent: pct,
		WindowStart: toolutil.Timestamp(s.WindowStart),
		ResetAt:     toolutil.Timestamp(s.ResetAt),
	}
}

// HealthSettings echoes the settings that shape governor behaviour.
type HealthSettings struct {
	CacheEnabled      bool    `json:"cache_enabled"`
	DailyQuotaLimit   int     `json:"daily_quota_limit"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	UsageJournal      bool    `json:"usage_journal"`
}

// HealthOutput is the output of get_extractor_health.
type HealthOutput struct {
	Status      string              `json:"status"`
	Cache       governor.CacheStats `json:"cache"`
	Quota       QuotaView           `json:"quota"`
	RateLimiter governor.RateStats  `json:"rate_limiter"`
	Executions  governor.ExecStats  `json:"executions"`
	Settings    HealthSettings      `json:"settings"`
}

// ClearCacheOutput is the output of clear_extractor_cache.
type ClearCacheOutput struct {
	Status     string              `json:"status"`
	Message    string              `json:"message"`
	CacheStats governor.CacheStats `json:"cache_stats"`
}

// ConfigOutput is the output of get_extractor_config.
type ConfigOutput struct {
	YouTubeAPIVersion   string         `json:"youtube_api_version"`
	APIBase             string         `json:"api_base"`
	DailyQuotaLimit     int            `json:"daily_quota_limit"`
	QuotaTimezone       string         `json:"quota_timezone"`
	RequestsPerSecond   float64        `json:"requests_per_second"`
	RateBurst           int            `json:"rate_burst"`
	RateMaxWaitSeconds  float64        `json:"rate_max_wait_seconds"`
	CacheEnabled        bool           `json:"cache_enabled"`
	CacheTTLSeconds     int            `json:"cache_ttl"`
	CacheMaxSize        int            `json:"cache_max_size"`
	CacheCleanupSeconds int            `json:"cache_cleanup_interval"`
	KindTTLSeconds      map[string]int `json:"kind_ttl,omitempty"`
	CoalesceMisses      bool           `json:"coalesce_misses"`
	BatchConcurrency    int            `json:"batch_concurrency"`
	UsageJournal        bool           `json:"usage_journal"`
	LogLevel            string         `json:"log_level"`
}

// QuotaUsageInput is the input for get_quota_usage.
type QuotaUsageInput struct {
	Day string `json:"day,omitempty" jsonschema:"Day to report as YYYY-MM-DD in the quota timezone (default: today)"`
}

// QuotaUsageOutput is the output of get_quota_usage.
type QuotaUsageOutput struct {
	Day        string              `json:"day"`
	TotalUnits int                 `json:"total_units"`
	TotalCalls int                 `json:"total_calls"`
	Kinds      []usagedb.KindUsage `json:"kinds"`
	Current    *QuotaView          `json:"current_window,omitempty"`
}

func registerHealth(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_extractor_health",
		Description: "Report extractor health: cache size and hit rate, quota used and remaining with the next reset time, rate limiter tokens and execution counters.",
		Annotations: readOnly,
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *HealthOutput, error) {
		gov := d.Client.Governor()
		st := gov.Stats()
		cfg := gov.Config()
		status := "healthy"
		if st.Quota.Remaining == 0 {
			status = "quota_exhausted"
		}
		return nil, &HealthOutput{
			Status:      status,
			Cache:       st.Cache,
			Quota:       quotaView(st.Quota),
			RateLimiter: st.Rate,
			Executions:  st.Exec,
			Settings: HealthSettings{
				CacheEnabled:      cfg.CacheEnabled,
				DailyQuotaLimit:   cfg.DailyQuotaLimit,
				RequestsPerSecond: cfg.RequestsPerSecond,
				UsageJournal:      d.Journal != nil,
			},
		}, nil
	})
}

func registerClearCache(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_extractor_cache",
		Description: "Drop every cached API response. The next lookups spend quota again.",
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *ClearCacheOutput, error) {
		gov := d.Client.Governor()
		gov.ClearCache()
		return nil, &ClearCacheOutput{
			Status:     "success",
			Message:    "Cache cleared successfully",
			CacheStats: gov.Stats().Cache,
		}, nil
	})
}

func registerConfig(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_extractor_config",
		Description: "Show the effective extractor configuration: quota limit and timezone, rate limits, cache settings and per-kind TTL overrides.",
		Annotations: readOnly,
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, *ConfigOutput, error) {
		gov := d.Client.Governor()
		cfg := gov.Config()
		tz := "UTC"
		if cfg.QuotaLocation != nil {
			tz = cfg.QuotaLocation.String()
		}
		out := &ConfigOutput{
			YouTubeAPIVersion:   "v3",
			APIBase:             d.Settings.APIBase,
			DailyQuotaLimit:     cfg.DailyQuotaLimit,
			QuotaTimezone:       tz,
			RequestsPerSecond:   cfg.RequestsPerSecond,
			RateBurst:           gov.Stats().Rate.Burst,
			RateMaxWaitSeconds:  cfg.RateMaxWait.Seconds(),
			CacheEnabled:        cfg.CacheEnabled,
			CacheTTLSeconds:     int(cfg.CacheTTL.Seconds()),
			CacheMaxSize:        cfg.CacheMaxEntries,
			CacheCleanupSeconds: int(cfg.CacheCleanupInterval.Seconds()),
			CoalesceMisses:      cfg.CoalesceMisses,
			BatchConcurrency:    cfg.BatchConcurrency,
			UsageJournal:        d.Journal != nil,
			LogLevel:            d.Settings.LogLevel,
		}
		if len(cfg.KindTTL) > 0 {
			out.KindTTLSeconds = make(map[string]int, len(cfg.KindTTL))
			for kind, ttl := range cfg.KindTTL {
				out.KindTTLSeconds[kind] = int(ttl.Seconds())
			}
		}
		return nil, out, nil
	})
}

var errJournalDisabled = errors.New("usage journal is disabled: set YOUTUBE_USAGE_DB to a SQLite path")

func registerQuotaUsage(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_quota_usage",
		Description: "Report quota units spent per operation kind for a day from the usage journal. Today's report also includes the live quota window.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input QuotaUsageInput) (*mcp.CallToolResult, *QuotaUsageOutput, error) {
		if d.Journal == nil {
			return nil, nil, errJournalDisabled
		}
		today := d.Journal.Today(d.now())
		day := input.Day
		if day == "" {
			day = today
		}
		usage, err := d.Journal.DailyUsage(ctx, day)
		if err != nil {
			return nil, nil, fmt.Errorf("get_quota_usage: %w", err)
		}
		out := &QuotaUsageOutput{
			Day:        usage.Day,
			TotalUnits: usage.Units,
			TotalCalls: usage.Calls,
			Kinds:      usage.Kinds,
		}
		if day == today {
			qv := quotaView(d.Client.Governor().Stats().Quota)
			out.Current = &qv
		}
		return nil, out, nil
	})
}
