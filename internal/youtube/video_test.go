package youtube

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoFixture = `{
  "kind": "youtube#videoListResponse",
  "items": [{
    "id": "dQw4w9WgXcQ",
    "snippet": {
      "publishedAt": "2009-10-25T06:57:33Z",
      "channelId": "UCuAXFkgsw1L7xaCfnd5JJOw",
      "title": "Never Gonna Give You Up",
      "description": "The official video",
      "thumbnails": {"default": {"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", "width": 120, "height": 90}},
      "channelTitle": "Rick Astley",
      "tags": ["rick astley", "80s"],
      "categoryId": "10"
    },
    "statistics": {"viewCount": "1000", "likeCount": "80", "favoriteCount": "0", "commentCount": "20"},
    "contentDetails": {"duration": "PT3M33S", "dimension": "2d", "definition": "hd", "caption": "true"},
    "status": {"privacyStatus": "public", "embeddable": true, "madeForKids": false}
  }]
}`

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
		format string
	}{
		{"PT3M33S", 213, true, "03:33"},
		{"PT1H2M3S", 3723, true, "01:02:03"},
		{"PT45S", 45, true, "00:45"},
		{"PT2H", 7200, true, "02:00:00"},
		{"P1DT1S", 86401, true, "24:00:01"},
		{"P0D", 0, true, "00:00"},
		{"PT", 0, false, ""},
		{"3:33", 0, false, ""},
		{"", 0, false, ""},
	}
	for _, tt := range tests {
		got, ok := ParseDuration(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDuration(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			continue
		}
		if ok {
			if f := FormatDuration(got); f != tt.format {
				t.Errorf("FormatDuration(%d) = %q, want %q", got, f, tt.format)
			}
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name   string
		stats  *VideoStatistics
		want   float64
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"no views", &VideoStatistics{LikeCount: ptr[int64](5)}, 0, false},
		{"zero views", &VideoStatistics{ViewCount: ptr[int64](0)}, 0, false},
		{"basic", &VideoStatistics{ViewCount: ptr[int64](1000), LikeCount: ptr[int64](80), CommentCount: ptr[int64](20)}, 10, true},
		{"rounded", &VideoStatistics{ViewCount: ptr[int64](3), LikeCount: ptr[int64](1)}, 33.33, true},
		{"hidden likes", &VideoStatistics{ViewCount: ptr[int64](200), CommentCount: ptr[int64](3)}, 1.5, true},
	}
	for _, tt := range tests {
		got, ok := EngagementRate(tt.stats)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("%s: EngagementRate = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLikeRatio(t *testing.T) {
	r, ok := LikeRatio(&VideoStatistics{LikeCount: ptr[int64](90), DislikeCount: ptr[int64](10)})
	assert.True(t, ok)
	assert.Equal(t, 90.0, r)

	r, ok = LikeRatio(&VideoStatistics{LikeCount: ptr[int64](7)})
	assert.True(t, ok)
	assert.Equal(t, 100.0, r)

	_, ok = LikeRatio(&VideoStatistics{})
	assert.False(t, ok)
}

func TestNewVideo(t *testing.T) {
	var env listEnvelope[apiVideo]
	require.NoError(t, json.Unmarshal([]byte(videoFixture), &env))
	v := newVideo(env.Items[0])

	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", v.URL)
	assert.Equal(t, "Rick Astley", v.Channel)
	assert.Equal(t, []string{"rick astley", "80s"}, v.Tags)
	require.NotNil(t, v.Statistics)
	assert.Equal(t, int64(1000), *v.Statistics.ViewCount)
	assert.Equal(t, 10.0, *v.EngagementRate)
	assert.Equal(t, 100.0, *v.LikeRatio)
	assert.Equal(t, &Duration{ISO8601: "PT3M33S", Seconds: 213, Formatted: "03:33"}, v.Duration)
	assert.Equal(t, "public", v.PrivacyStatus)
	assert.Equal(t, true, *v.Embeddable)

	best, ok := v.Thumbnails.Best()
	assert.True(t, ok)
	assert.Equal(t, 120, best.Width)
}

func TestNewVideoWithoutStatistics(t *testing.T) {
	v := newVideo(apiVideo{ID: "abcdefghijk"})
	assert.Nil(t, v.Statistics)
	assert.Nil(t, v.EngagementRate)
	assert.Nil(t, v.Duration)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abcdefghijk","url":"https://www.youtube.com/watch?v=abcdefghijk"}`, string(out))
}

func TestVideoInfo(t *testing.T) {
	api := newFakeAPI(t)
	api.json("videos", videoFixture)
	c := newTestClient(t, api, nil)
	ctx := context.Background()

	v, err := c.VideoInfo(ctx, "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", v.Title)

	q := api.last().URL.Query()
	assert.Equal(t, "dQw4w9WgXcQ", q.Get("id"))
	assert.Equal(t, videoParts, q.Get("part"))

	// Same video through another URL form is a cache hit.
	_, err = c.VideoInfo(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42")
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("videos"))
	assert.Equal(t, 1, quotaUsed(c))
}

func TestVideoInfoErrors(t *testing.T) {
	api := newFakeAPI(t)
	api.json("videos", `{"items":[]}`)
	c := newTestClient(t, api, nil)

	_, err := c.VideoInfo(context.Background(), "https://example.com/nothing")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Zero(t, api.count("videos"), "invalid input spends nothing")

	_, err = c.VideoInfo(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrNotFound)
}
