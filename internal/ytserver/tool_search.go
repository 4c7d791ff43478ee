package ytserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/toolutil"
	"github.com/anatolykoptev/go_youtube/internal/youtube"
)

// SearchInput is the input for search_youtube.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"Search query"`
	SearchType string `json:"search_type,omitempty" jsonschema:"Result type: video (default), channel, playlist"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum results (default: 20, max: 50)"`
}

// TrendingInput is the input for get_trending_videos.
type TrendingInput struct {
	Region     string `json:"region,omitempty" jsonschema:"Two-letter country code, e.g. US (default), GB, DE, JP, IN"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum results (default: 20, max: 50)"`
}

// BatchInput is the input for batch_extract_urls.
type BatchInput struct {
	URLs        []string `json:"urls" jsonschema:"YouTube URLs to process (max 10)"`
	ExtractType string   `json:"extract_type,omitempty" jsonschema:"What to extract from every URL: video (default), channel, playlist"`
}

func registerSearch(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_youtube",
		Description: "Search YouTube for videos, channels or playlists. Expensive: each uncached search costs 100 of the 10,000 daily quota units.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, *youtube.SearchResults, error) {
		if err := toolutil.Required("query", input.Query); err != nil {
			return nil, nil, err
		}
		res, err := d.Client.Search(ctx, input.Query, input.SearchType, toolutil.OrDefault(input.MaxResults, 20))
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func registerTrending(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_trending_videos",
		Description: "Get the most popular videos in a country right now, with statistics and engagement rates.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TrendingInput) (*mcp.CallToolResult, *youtube.Trending, error) {
		res, err := d.Client.Trending(ctx, input.Region, toolutil.OrDefault(input.MaxResults, 20))
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func registerBatchExtract(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_extract_urls",
		Description: "Extract video, channel or playlist details for up to 10 URLs concurrently. Per-URL failures are listed in errors and do not fail the batch.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchInput) (*mcp.CallToolResult, *youtube.BatchExtraction, error) {
		urls := toolutil.CleanURLs(input.URLs)
		if len(urls) == 0 {
			return nil, nil, errors.New("urls is required")
		}
		res, err := d.Client.BatchExtract(ctx, urls, input.ExtractType)
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}
