package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_youtube/internal/toolutil"
	"github.com/anatolykoptev/go_youtube/internal/youtube"
)

// ChannelInput is the input for get_channel_info.
type ChannelInput struct {
	URL string `json:"url" jsonschema:"Channel URL in any format: /channel/UC..., /@handle, /user/name, /c/name, or a bare UC id or @handle. /c/ names cost an extra 100 units to resolve"`
}

// PlaylistInput is the input for get_playlist_info.
type PlaylistInput struct {
	URL string `json:"url" jsonschema:"Playlist URL (playlist?list=... or a watch URL with list=) or a bare playlist id"`
}

func registerChannelInfo(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_channel_info",
		Description: "Get a YouTube channel's details: title, description, handle, country, keywords, subscriber/view/video counts, subscriber tier and per-video averages.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChannelInput) (*mcp.CallToolResult, *youtube.Channel, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		ch, err := d.Client.ChannelInfo(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, ch, nil
	})
}

func registerPlaylistInfo(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_playlist_info",
		Description: "Get a YouTube playlist's details and up to its first 100 videos with titles and positions.",
		Annotations: readOnly,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PlaylistInput) (*mcp.CallToolResult, *youtube.Playlist, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, nil, err
		}
		p, err := d.Client.PlaylistInfo(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, p, nil
	})
}
