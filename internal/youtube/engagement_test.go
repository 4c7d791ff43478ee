package youtube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementLevel(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{15, "Excellent"},
		{10, "Excellent"},
		{9.99, "Good"},
		{5, "Good"},
		{2, "Average"},
		{1.99, "Below Average"},
		{0, "Below Average"},
	}
	for _, tt := range tests {
		if got := EngagementLevel(tt.rate); got != tt.want {
			t.Errorf("EngagementLevel(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestRecommendations(t *testing.T) {
	assert.Empty(t, Recommendations(12, 98))
	assert.Len(t, Recommendations(6, 80), 1, "low like ratio only")
	assert.Len(t, Recommendations(3, 95), 3, "below good")
	assert.Len(t, Recommendations(1, 50), 7, "everything")
}

func TestAnalyzeEngagement(t *testing.T) {
	api := newFakeAPI(t)
	api.json("videos", videoFixture)
	c := newTestClient(t, api, nil)
	c.now = func() time.Time { return time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("X", 5*3600)) }

	_, err := c.VideoInfo(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	r, err := c.AnalyzeEngagement(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("videos"), "reuses the cached video")

	require.NotNil(t, r.Analysis)
	assert.Equal(t, 10.0, r.Analysis.EngagementRate)
	assert.Equal(t, "Excellent", r.Analysis.EngagementLevel)
	assert.Equal(t, int64(100), r.Analysis.TotalInteractions)
	assert.Equal(t, 12.5, *r.Analysis.ViewsPerLike)
	assert.Equal(t, 50.0, *r.Analysis.ViewsPerComment)
	assert.Equal(t, []string{}, r.Recommendations)
	assert.Equal(t, ExcellentEngagement, r.Benchmarks.Excellent)
	assert.Equal(t, "2026-03-14", r.Metadata.AnalysisDate)
}

func TestAnalyzeWithoutStatistics(t *testing.T) {
	r := analyze(&Video{ID: "abcdefghijk", Title: "hidden"}, "2026-01-01")
	assert.Nil(t, r.Analysis)
	assert.Nil(t, r.Benchmarks)
	assert.NotEmpty(t, r.Error)
}
