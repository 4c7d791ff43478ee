package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/toolutil"
	"github.com/anatolykoptev/go_youtube/internal/youtube"
)

// VideoInput is the input for get_video_info and analyze_video_engagement.
type VideoInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, shorts, embed, live) or a bare 11-character video id"`
}

// CommentsInput is the input for get_video_comments.
type CommentsInput struct {
	URL         string `json:"url" jsonschema:"YouTube video URL or video id"`
	MaxComments int    `json:"max_comments,omitempty" jsonschema:"Maximum comment threads to return (default: 20). One quota unit per 100 threads"`
	Order       string `json:"order,omitempty" jsonschema:"Sort order: relevance (default) or time"`
}

// CommentsBatchInput is the input for get_video_comments_batch.
type CommentsBatchInput struct {
	URL          string `json:"url" jsonschema:"YouTube video URL or video id"`
	TotalDesired int    `json:"total_desired,omitempty" jsonschema:"Total comment threads to try to collect (default: 100)"`
	BatchSize    int    `json:"batch_size,omitempty" jsonschema:"Threads per request (default: 20, max: 50)"`
}

func registerVideoInfo(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_video_info",
		Description: "Get metadata for a YouTube video: title, channel, description, tags, duration, view/like/comment counts, engagement rate and privacy status. Costs 1 quota unit; repeated lookups are served from cache.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, *youtube.Video, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		v, err := d.Client.VideoInfo(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, v, nil
	})
}

func registerVideoComments(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_video_comments",
		Description: "Get top-level comment threads for a YouTube video with author, text, likes and inline replies. Videos with comments disabled return an empty list with comments_disabled set.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CommentsInput) (*mcp.CallToolResult, *youtube.Comments, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		res, err := d.Client.VideoComments(ctx, input.URL, toolutil.OrDefault(input.MaxComments, 20), input.Order)
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func registerVideoCommentsBatch(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_video_comments_batch",
		Description: "Collect a larger set of comment threads in sequential batches that follow page tokens. Failed batches are skipped; the result reports batches completed and the success rate. Stops early when the daily quota runs out.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CommentsBatchInput) (*mcp.CallToolResult, *youtube.CommentsBatch, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		res, err := d.Client.CommentsBatch(ctx, input.URL, toolutil.OrDefault(input.TotalDesired, 100), toolutil.OrDefault(input.BatchSize, 20))
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func registerAnalyzeEngagement(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_video_engagement",
		Description: "Grade a video's engagement: engagement rate, like ratio, views per like/comment, level against benchmarks (Excellent >= 10%, Good >= 5%, Average >= 2%) and improvement recommendations.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, *youtube.EngagementReport, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		res, err := d.Client.AnalyzeEngagement(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}
