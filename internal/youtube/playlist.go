package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
)

// Playlist is a playlist with its first items.
type Playlist struct {
	ID            string          `json:"id"`
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ChannelID     string          `json:"channel_id"`
	ChannelTitle  string          `json:"channel_title"`
	PublishedAt   string          `json:"published_at"`
	Thumbnails    Thumbnails      `json:"thumbnails,omitempty"`
	VideoCount    int64           `json:"video_count"`
	PrivacyStatus string          `json:"privacy_status,omitempty"`
	Videos        []PlaylistVideo `json:"videos"`
	Metadata      SourceInfo      `json:"metadata"`
}

// PlaylistVideo is one playlist entry.
type PlaylistVideo struct {
	VideoID      string     `json:"video_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	ChannelTitle string     `json:"channel_title,omitempty"`
	PublishedAt  string     `json:"published_at,omitempty"`
	Thumbnails   Thumbnails `json:"thumbnails,omitempty"`
	Position     int        `json:"position"`
}

// MaxPlaylistItems caps how many entries PlaylistInfo collects.
const MaxPlaylistItems = 100

const (
	playlistPageSize  = 50
	playlistParts     = "snippet,contentDetails,status"
	playlistItemParts = "snippet,contentDetails"
)

// PlaylistInfo fetches playlist details plus up to MaxPlaylistItems entries.
// Costs one unit for the details and one per page of 50 entries.
func (c *Client) PlaylistInfo(ctx context.Context, rawURL string) (*Playlist, error) {
	id := ExtractPlaylistID(rawURL)
	if id == "" {
		return nil, fmt.Errorf("%w: no playlist id in %q", ErrInvalidURL, rawURL)
	}

	params := url.Values{"part": {playlistParts}, "id": {id}}
	resp, err := call[listEnvelope[apiPlaylist]](ctx, c, operation(KindPlaylists, CostList, id), "playlists", params)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", id, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}
	p := resp.Items[0]

	out := &Playlist{
		ID:           id,
		URL:          "https://www.youtube.com/playlist?list=" + id,
		Title:        p.Snippet.Title,
		Description:  p.Snippet.Description,
		ChannelID:    p.Snippet.ChannelID,
		ChannelTitle: p.Snippet.ChannelTitle,
		PublishedAt:  p.Snippet.PublishedAt,
		Thumbnails:   p.Snippet.Thumbnails,
		VideoCount:   p.ContentDetails.ItemCount,
		Videos:       []PlaylistVideo{},
		Metadata:     dataAPI(),
	}
	if p.Status != nil {
		out.PrivacyStatus = p.Status.PrivacyStatus
	}

	out.Videos, err = c.playlistItems(ctx, id, MaxPlaylistItems)
	if err != nil {
		return nil, fmt.Errorf("playlist %s items: %w", id, err)
	}
	slog.Debug("youtube: playlist info", slog.String("id", id), slog.Int("videos", len(out.Videos)))
	return out, nil
}

func (c *Client) playlistItems(ctx context.Context, playlistID string, limit int) ([]PlaylistVideo, error) {
	videos := []PlaylistVideo{}
	token := ""
	for len(videos) < limit {
		size := min(playlistPageSize, limit-len(videos))
		params := url.Values{
			"part":       {playlistItemParts},
			"playlistId": {playlistID},
			"maxResults": {strconv.Itoa(size)},
		}
		if token != "" {
			params.Set("pageToken", token)
		}
		op := operation(KindPlaylistItems, CostList, playlistID, token, strconv.Itoa(size))
		page, err := call[listEnvelope[apiPlaylistItem]](ctx, c, op, "playlistItems", params)
		if err != nil {
			return nil, err
		}
		for _, it := range page.Items {
			videos = append(videos, PlaylistVideo{
				VideoID:      it.ContentDetails.VideoID,
				Title:        it.Snippet.Title,
				Description:  it.Snippet.Description,
				ChannelTitle: it.Snippet.ChannelTitle,
				PublishedAt:  it.Snippet.PublishedAt,
				Thumbnails:   it.Snippet.Thumbnails,
				Position:     it.Snippet.Position,
			})
		}
		token = page.NextPageToken
		if token == "" || len(page.Items) == 0 {
			break
		}
	}
	if len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}
