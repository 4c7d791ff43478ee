package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// Channel is the flattened view of a channels.list item.
type Channel struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	CustomURL   string     `json:"custom_url,omitempty"`
	HandleURL   string     `json:"handle_url,omitempty"`
	PublishedAt string     `json:"published_at,omitempty"`
	Thumbnails  Thumbnails `json:"thumbnails,omitempty"`
	Country     string     `json:"country,omitempty"`
	Keywords    []string   `json:"keywords"`

	Statistics        *ChannelStatistics `json:"statistics,omitempty"`
	SubscriberTier    string             `json:"subscriber_tier,omitempty"`
	EngagementMetrics *ChannelMetrics    `json:"engagement_metrics,omitempty"`

	UploadsPlaylistID string `json:"uploads_playlist_id,omitempty"`
	PrivacyStatus     string `json:"privacy_status,omitempty"`
	MadeForKids       *bool  `json:"made_for_kids,omitempty"`
}

// ChannelStatistics are the public channel counters.
type ChannelStatistics struct {
	ViewCount             *int64 `json:"view_count,omitempty"`
	SubscriberCount       *int64 `json:"subscriber_count,omitempty"`
	VideoCount            *int64 `json:"video_count,omitempty"`
	HiddenSubscriberCount bool   `json:"hidden_subscriber_count"`
}

// ChannelMetrics are per-video averages.
type ChannelMetrics struct {
	AvgViewsPerVideo    *int64   `json:"avg_views_per_video,omitempty"`
	SubscribersPerVideo *float64 `json:"subscribers_per_video,omitempty"`
}

// SubscriberTier buckets a subscriber count, e.g. "2M+ (Gold)".
func SubscriberTier(subs *int64) string {
	if subs == nil || *subs == 0 {
		return "Unknown"
	}
	n := *subs
	switch {
	case n >= 10_000_000:
		return fmt.Sprintf("%dM+ (Diamond)", n/1_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%dM+ (Gold)", n/1_000_000)
	case n >= 100_000:
		return fmt.Sprintf("%dK+ (Silver)", n/1_000)
	case n >= 1_000:
		return fmt.Sprintf("%dK+ (Bronze)", n/1_000)
	default:
		return fmt.Sprintf("%d (Starting)", n)
	}
}

// channelMetrics returns nil when there is nothing to average over.
func channelMetrics(s *ChannelStatistics) *ChannelMetrics {
	if s == nil || s.VideoCount == nil || *s.VideoCount == 0 {
		return nil
	}
	m := &ChannelMetrics{}
	videos := float64(*s.VideoCount)
	if s.ViewCount != nil && *s.ViewCount > 0 {
		avg := int64(round(float64(*s.ViewCount)/videos, 0))
		m.AvgViewsPerVideo = &avg
	}
	if s.SubscriberCount != nil && *s.SubscriberCount > 0 {
		spv := round(float64(*s.SubscriberCount)/videos, 2)
		m.SubscribersPerVideo = &spv
	}
	return m
}

var keywordRE = regexp.MustCompile(`"[^"]*"|\S+`)

// splitKeywords parses the space separated, optionally quoted keyword string.
func splitKeywords(s string) []string {
	out := []string{}
	for _, kw := range keywordRE.FindAllString(s, -1) {
		if kw = strings.TrimSpace(strings.Trim(kw, `"`)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func newChannel(ch apiChannel) Channel {
	out := Channel{ID: ch.ID, URL: "https://www.youtube.com/channel/" + ch.ID, Keywords: []string{}}
	if sn := ch.Snippet; sn != nil {
		out.Title = sn.Title
		out.Description = sn.Description
		out.CustomURL = sn.CustomURL
		out.PublishedAt = sn.PublishedAt
		out.Thumbnails = sn.Thumbnails
		out.Country = sn.Country
		if sn.CustomURL != "" {
			out.HandleURL = "https://www.youtube.com/@" + strings.TrimPrefix(sn.CustomURL, "@")
		}
	}
	if b := ch.BrandingSettings; b != nil {
		out.Keywords = splitKeywords(b.Channel.Keywords)
	}
	if st := ch.Statistics; st != nil {
		out.Statistics = &ChannelStatistics{
			ViewCount:             st.ViewCount.ptr(),
			SubscriberCount:       st.SubscriberCount.ptr(),
			VideoCount:            st.VideoCount.ptr(),
			HiddenSubscriberCount: st.HiddenSubscriberCount,
		}
		out.SubscriberTier = SubscriberTier(out.Statistics.SubscriberCount)
		out.EngagementMetrics = channelMetrics(out.Statistics)
	}
	if cd := ch.ContentDetails; cd != nil {
		out.UploadsPlaylistID = cd.RelatedPlaylists["uploads"]
	}
	if st := ch.Status; st != nil {
		out.PrivacyStatus = st.PrivacyStatus
		out.MadeForKids = st.MadeForKids
	}
	return out
}

const channelParts = "snippet,statistics,contentDetails,status,brandingSettings"

// ChannelInfo fetches a channel from any supported reference.
//
// Ids, @handles and /user/ names cost one unit each. /c/ and legacy custom names
// have no direct lookup and are resolved with a channel search first (100 units).
func (c *Client) ChannelInfo(ctx context.Context, rawURL string) (*Channel, error) {
	ref, ok := ExtractChannelRef(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: no channel in %q", ErrInvalidURL, rawURL)
	}

	if ref.Kind == ChannelByCustom {
		id, err := c.resolveCustomName(ctx, ref.Value)
		if err != nil {
			return nil, err
		}
		ref = ChannelRef{Kind: ChannelByID, Value: id}
	}

	params := url.Values{"part": {channelParts}}
	switch ref.Kind {
	case ChannelByID:
		params.Set("id", ref.Value)
	case ChannelByHandle:
		params.Set("forHandle", "@"+ref.Value)
	case ChannelByUsername:
		params.Set("forUsername", ref.Value)
	}

	op := operation(KindChannels, CostList, string(ref.Kind), ref.Value, channelParts)
	resp, err := call[listEnvelope[apiChannel]](ctx, c, op, "channels", params)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", ref.Value, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s: %w", ref.Value, ErrNotFound)
	}

	ch := newChannel(resp.Items[0])
	slog.Debug("youtube: channel info", slog.String("ref", ref.Value), slog.String("id", ch.ID))
	return &ch, nil
}

func (c *Client) resolveCustomName(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"part":       {"snippet"},
		"q":          {name},
		"type":       {"channel"},
		"maxResults": {"1"},
	}
	resp, err := call[listEnvelope[apiSearchResult]](ctx, c, operation(KindChannelSearch, CostSearch, name), "search", params)
	if err != nil {
		return "", fmt.Errorf("resolve channel %q: %w", name, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("resolve channel %q: %w", name, ErrNotFound)
	}
	id := resp.Items[0].ID.ChannelID
	if id == "" {
		id = resp.Items[0].Snippet.ChannelID
	}
	return id, nil
}
