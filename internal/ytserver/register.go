// Package ytserver exposes the governed YouTube client as MCP tools.
package ytserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/usagedb"
	"github.com/anatolykoptev/go_youtube/internal/youtube"
)

// UsageJournal is the read side of the usage journal.
type UsageJournal interface {
	DailyUsage(ctx context.Context, day string) (*usagedb.DayUsage, error)
	Today(now time.Time) string
}

// Settings are reported by get_extractor_config and get_extractor_health.
type Settings struct {
	APIBase  string
	LogLevel string
}

// Deps are the collaborators shared by every tool.
type Deps struct {
	Client   *youtube.Client
	Journal  UsageJournal // nil when YOUTUBE_USAGE_DB is unset
	Settings Settings
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterTools registers all YouTube tools on server and returns how many.
func RegisterTools(server *mcp.Server, d Deps) int {
	regs := []func(*mcp.Server, Deps){
		registerVideoInfo,
		registerVideoComments,
		registerVideoCommentsBatch,
		registerAnalyzeEngagement,
		registerChannelInfo,
		registerPlaylistInfo,
		registerSearch,
		registerTrending,
		registerBatchExtract,
		registerHealth,
		registerClearCache,
		registerConfig,
		registerQuotaUsage,
	}
	for _, reg := range regs {
		reg(server, d)
	}
	return len(regs)
}

var readOnly = &mcp.ToolAnnotations{ReadOnlyHint: true}
