package youtube

import (
	"context"
)

// Engagement levels by engagement rate, in percent.
const (
	ExcellentEngagement = 10.0
	GoodEngagement      = 5.0
	AverageEngagement   = 2.0
)

// EngagementAnalysis holds the computed ratios for one video.
type EngagementAnalysis struct {
	EngagementRate    float64  `json:"engagement_rate"`
	LikeRatio         float64  `json:"like_ratio"`
	EngagementLevel   string   `json:"engagement_level"`
	TotalInteractions int64    `json:"total_interactions"`
	ViewsPerLike      *float64 `json:"views_per_like,omitempty"`
	ViewsPerComment   *float64 `json:"views_per_comment,omitempty"`
}

// Benchmarks are the thresholds the level was graded against.
type Benchmarks struct {
	Excellent float64 `json:"excellent_engagement"`
	Good      float64 `json:"good_engagement"`
	Average   float64 `json:"average_engagement"`
	Poor      float64 `json:"poor_engagement"`
}

// EngagementMeta describes an engagement report.
type EngagementMeta struct {
	APISource    string `json:"api_source"`
	AnalysisDate string `json:"analysis_date"`
}

// EngagementReport is the result of AnalyzeEngagement. Error is set instead of
// Analysis when the video hides its statistics.
type EngagementReport struct {
	VideoID         string              `json:"video_id"`
	Title           string              `json:"title"`
	Analysis        *EngagementAnalysis `json:"engagement_analysis,omitempty"`
	Benchmarks      *Benchmarks         `json:"benchmarks,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
	Error           string              `json:"error,omitempty"`
	Metadata        EngagementMeta      `json:"metadata"`
}

var defaultBenchmarks = Benchmarks{
	Excellent: ExcellentEngagement,
	Good:      GoodEngagement,
	Average:   AverageEngagement,
	Poor:      AverageEngagement,
}

// EngagementLevel grades an engagement rate.
func EngagementLevel(rate float64) string {
	switch {
	case rate >= ExcellentEngagement:
		return "Excellent"
	case rate >= GoodEngagement:
		return "Good"
	case rate >= AverageEngagement:
		return "Average"
	default:
		return "Below Average"
	}
}

// Recommendations suggests improvements for weak engagement.
func Recommendations(rate, likeRatio float64) []string {
	var recs []string
	if rate < AverageEngagement {
		recs = append(recs,
			"Consider improving thumbnail and title to increase click-through rate",
			"Add clear calls-to-action to encourage likes and comments",
			"Engage with viewers by responding to comments",
		)
	}
	if likeRatio < 90.0 {
		recs = append(recs, "Content might be controversial or not meeting viewer expectations")
	}
	if rate < GoodEngagement {
		recs = append(recs,
			"Try asking questions to encourage comments",
			"Create content that sparks discussion",
			"Optimize posting time for your audience",
		)
	}
	return recs
}

// AnalyzeEngagement grades a video's engagement. It reuses VideoInfo, so a
// recently fetched video costs nothing.
func (c *Client) AnalyzeEngagement(ctx context.Context, rawURL string) (*EngagementReport, error) {
	v, err := c.VideoInfo(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return analyze(v, c.now().UTC().Format("2006-01-02")), nil
}

func analyze(v *Video, date string) *EngagementReport {
	report := &EngagementReport{
		VideoID:  v.ID,
		Title:    v.Title,
		Metadata: EngagementMeta{APISource: apiSource, AnalysisDate: date},
	}
	if v.Statistics == nil {
		report.Error = "No statistics available for engagement analysis"
		return report
	}

	views := deref(v.Statistics.ViewCount)
	likes := deref(v.Statistics.LikeCount)
	comments := deref(v.Statistics.CommentCount)
	rate, likeRatio := 0.0, 0.0
	if v.EngagementRate != nil {
		rate = *v.EngagementRate
	}
	if v.LikeRatio != nil {
		likeRatio = *v.LikeRatio
	}

	a := &EngagementAnalysis{
		EngagementRate:    rate,
		LikeRatio:         likeRatio,
		EngagementLevel:   EngagementLevel(rate),
		TotalInteractions: likes + comments,
	}
	if likes > 0 {
		r := round(float64(views)/float64(likes), 2)
		a.ViewsPerLike = &r
	}
	if comments > 0 {
		r := round(float64(views)/float64(comments), 2)
		a.ViewsPerComment = &r
	}

	bm := defaultBenchmarks
	report.Analysis = a
	report.Benchmarks = &bm
	report.Recommendations = Recommendations(rate, likeRatio)
	if report.Recommendations == nil {
		report.Recommendations = []string{}
	}
	return report
}
