// go_youtube: YouTube Data API MCP server.
//
// Every API call goes through one governor (cache, rate limiter, daily quota
// tracker), so tools can be called freely without blowing the 10,000 unit budget.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/governor"
	"github.com/anatolykoptev/go_youtube/internal/usagedb"
	"github.com/anatolykoptev/go_youtube/internal/youtube"
	"github.com/anatolykoptev/go_youtube/internal/ytserver"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: .env not loaded", slog.Any("error", err))
	}
	logLevel := initLogging()
	mcpPort := env.Str("MCP_PORT", "8893")

	cfg, err := loadGovernorConfig()
	if err != nil {
		slog.Error("config: invalid governor settings", slog.Any("error", err))
		os.Exit(1)
	}

	var opts []governor.Option
	var journal *usagedb.Store
	if path := env.Str("YOUTUBE_USAGE_DB", ""); path != "" {
		journal, err = usagedb.Open(path, cfg.QuotaLocation)
		if err != nil {
			slog.Warn("usagedb: unavailable, running without usage journal", slog.Any("error", err))
		} else {
			defer journal.Close()
			opts = append(opts, governor.WithUsageRecorder(journal))
			slog.Info("usagedb: initialized", slog.String("path", path))
		}
	}

	gov, err := governor.New(cfg, opts...)
	if err != nil {
		slog.Error("governor init failed", slog.Any("error", err))
		os.Exit(1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gov.Start(ctx)

	apiBase := env.Str("YOUTUBE_API_BASE", youtube.DefaultBaseURL)
	yt, err := youtube.NewClient(youtube.ClientConfig{
		APIKey:  env.Str("YOUTUBE_API_KEY", ""),
		BaseURL: apiBase,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}, gov)
	if err != nil {
		slog.Error("youtube client init failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_youtube",
		slog.String("port", mcpPort),
		slog.Int("daily_quota_limit", cfg.DailyQuotaLimit),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_youtube",
		Version: version,
	}, nil)

	deps := ytserver.Deps{
		Client:   yt,
		Settings: ytserver.Settings{APIBase: apiBase, LogLevel: logLevel},
	}
	if journal != nil {
		deps.Journal = journal
	}
	n := ytserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", n))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_youtube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      gov.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

// initLogging applies LOG_LEVEL to the default slog logger and returns the level name.
func initLogging() string {
	name := strings.ToLower(env.Str("LOG_LEVEL", "info"))
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		slog.Warn("config: unknown LOG_LEVEL, using info", slog.String("level", name))
		name, level = "info", slog.LevelInfo
	}
	slog.SetLogLoggerLevel(level)
	return name
}

func loadGovernorConfig() (governor.Config, error) {
	cfg := governor.DefaultConfig()
	cfg.DailyQuotaLimit = env.Int("YOUTUBE_DAILY_QUOTA_LIMIT", cfg.DailyQuotaLimit)
	cfg.RequestsPerSecond = env.Float("YOUTUBE_REQUESTS_PER_SECOND", cfg.RequestsPerSecond)
	cfg.RateBurst = env.Int("YOUTUBE_RATE_BURST", 0)
	cfg.RateMaxWait = env.Duration("YOUTUBE_RATE_MAX_WAIT", cfg.RateMaxWait)
	cfg.CacheEnabled = envBool("YOUTUBE_CACHE_ENABLED", cfg.CacheEnabled)
	cfg.CacheTTL = time.Duration(env.Int("YOUTUBE_CACHE_TTL", int(cfg.CacheTTL.Seconds()))) * time.Second
	cfg.CacheMaxEntries = env.Int("YOUTUBE_CACHE_MAX_SIZE", cfg.CacheMaxEntries)
	cfg.CacheCleanupInterval = env.Duration("YOUTUBE_CACHE_CLEANUP_INTERVAL", cfg.CacheCleanupInterval)
	cfg.KindTTL = map[string]time.Duration{
		youtube.KindTrending: env.Duration("YOUTUBE_TRENDING_CACHE_TTL", 15*time.Minute),
	}
	cfg.CoalesceMisses = envBool("YOUTUBE_COALESCE_MISSES", false)
	cfg.BatchConcurrency = env.Int("YOUTUBE_BATCH_CONCURRENCY", cfg.BatchConcurrency)

	tz := env.Str("YOUTUBE_QUOTA_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cfg, err
	}
	cfg.QuotaLocation = loc

	return cfg, cfg.Validate()
}

// envBool reads a boolean variable; unparsable values fall back to def.
func envBool(key string, def bool) bool {
	v := env.Str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config: invalid boolean", slog.String("key", key), slog.String("value", v))
		return def
	}
	return b
}
