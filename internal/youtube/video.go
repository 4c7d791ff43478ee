package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
)

// Video is the flattened view of a videos.list item.
type Video struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Channel     string     `json:"channel,omitempty"`
	ChannelID   string     `json:"channel_id,omitempty"`
	PublishedAt string     `json:"published_at,omitempty"`
	Thumbnails  Thumbnails `json:"thumbnails,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CategoryID  string     `json:"category_id,omitempty"`
	LiveContent string     `json:"live_broadcast_content,omitempty"`

	Statistics     *VideoStatistics `json:"statistics,omitempty"`
	EngagementRate *float64         `json:"engagement_rate,omitempty"`
	LikeRatio      *float64         `json:"like_ratio,omitempty"`

	Duration   *Duration `json:"duration,omitempty"`
	Definition string    `json:"definition,omitempty"`
	Dimension  string    `json:"dimension,omitempty"`
	Caption    string    `json:"caption,omitempty"`

	PrivacyStatus string `json:"privacy_status,omitempty"`
	Embeddable    *bool  `json:"embeddable,omitempty"`
	MadeForKids   *bool  `json:"made_for_kids,omitempty"`
}

// VideoStatistics are public counters. Nil fields are hidden by the uploader.
type VideoStatistics struct {
	ViewCount     *int64 `json:"view_count,omitempty"`
	LikeCount     *int64 `json:"like_count,omitempty"`
	DislikeCount  *int64 `json:"-"`
	CommentCount  *int64 `json:"comment_count,omitempty"`
	FavoriteCount *int64 `json:"favorite_count,omitempty"`
}

// Duration is a video length in three renderings.
type Duration struct {
	ISO8601   string `json:"iso_8601"`
	Seconds   int    `json:"seconds"`
	Formatted string `json:"formatted"`
}

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO 8601 duration such as PT1H2M3S to seconds.
func ParseDuration(iso string) (int, bool) {
	m := isoDurationRE.FindStringSubmatch(iso)
	if m == nil || iso == "P" || iso == "PT" {
		return 0, false
	}
	total := 0
	for i, mult := range []int{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * mult
	}
	return total, true
}

// FormatDuration renders seconds as HH:MM:SS, or MM:SS under an hour.
func FormatDuration(total int) string {
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// EngagementRate is (likes + comments) / views as a percentage, two decimals.
// ok is false without a positive view count.
func EngagementRate(s *VideoStatistics) (float64, bool) {
	if s == nil || s.ViewCount == nil || *s.ViewCount == 0 {
		return 0, false
	}
	interactions := deref(s.LikeCount) + deref(s.CommentCount)
	return round(float64(interactions)/float64(*s.ViewCount)*100, 2), true
}

// LikeRatio is likes / (likes + dislikes) as a percentage. The API stopped
// publishing dislikes, so any liked video scores 100.
func LikeRatio(s *VideoStatistics) (float64, bool) {
	if s == nil {
		return 0, false
	}
	likes, dislikes := deref(s.LikeCount), deref(s.DislikeCount)
	if likes+dislikes == 0 {
		return 0, false
	}
	return round(float64(likes)/float64(likes+dislikes)*100, 2), true
}

func newVideo(v apiVideo) Video {
	out := Video{ID: v.ID, URL: "https://www.youtube.com/watch?v=" + v.ID}
	if sn := v.Snippet; sn != nil {
		out.Title = sn.Title
		out.Description = sn.Description
		out.Channel = sn.ChannelTitle
		out.ChannelID = sn.ChannelID
		out.PublishedAt = sn.PublishedAt
		out.Thumbnails = sn.Thumbnails
		out.Tags = sn.Tags
		out.CategoryID = sn.CategoryID
		out.LiveContent = sn.LiveContent
	}
	if st := v.Statistics; st != nil {
		out.Statistics = &VideoStatistics{
			ViewCount:     st.ViewCount.ptr(),
			LikeCount:     st.LikeCount.ptr(),
			DislikeCount:  st.DislikeCount.ptr(),
			CommentCount:  st.CommentCount.ptr(),
			FavoriteCount: st.FavoriteCount.ptr(),
		}
		if r, ok := EngagementRate(out.Statistics); ok {
			out.EngagementRate = &r
		}
		if r, ok := LikeRatio(out.Statistics); ok {
			out.LikeRatio = &r
		}
	}
	if cd := v.ContentDetails; cd != nil {
		if secs, ok := ParseDuration(cd.Duration); ok {
			out.Duration = &Duration{ISO8601: cd.Duration, Seconds: secs, Formatted: FormatDuration(secs)}
		}
		out.Definition = cd.Definition
		out.Dimension = cd.Dimension
		out.Caption = cd.Caption
	}
	if st := v.Status; st != nil {
		out.PrivacyStatus = st.PrivacyStatus
		out.Embeddable = st.Embeddable
		out.MadeForKids = st.MadeForKids
	}
	return out
}

const videoParts = "snippet,statistics,contentDetails,status"

// VideoInfo fetches one video by URL or bare id. Costs one unit on a cache miss.
func (c *Client) VideoInfo(ctx context.Context, rawURL string) (*Video, error) {
	id := ExtractVideoID(rawURL)
	if id == "" {
		return nil, fmt.Errorf("%w: no video id in %q", ErrInvalidURL, rawURL)
	}

	params := url.Values{"part": {videoParts}, "id": {id}}
	resp, err := call[listEnvelope[apiVideo]](ctx, c, operation(KindVideos, CostList, id, videoParts), "videos", params)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	v := newVideo(resp.Items[0])
	slog.Debug("youtube: video info", slog.String("id", id), slog.String("title", v.Title))
	return &v, nil
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
