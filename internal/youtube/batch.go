package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

// MaxBatchURLs caps one BatchExtract call.
const MaxBatchURLs = 10

// Extract types accepted by BatchExtract.
const (
	ExtractVideo    = "video"
	ExtractChannel  = "channel"
	ExtractPlaylist = "playlist"
)

// BatchItem is a successful extraction.
type BatchItem struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Data  any    `json:"data"`
}

// BatchFailure is a failed extraction.
type BatchFailure struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// BatchMeta summarises a batch run.
type BatchMeta struct {
	TotalURLs   int     `json:"total_urls"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	ExtractType string  `json:"extract_type"`
	APISource   string  `json:"api_source"`
}

// BatchExtraction is the result of BatchExtract.
type BatchExtraction struct {
	Results  []BatchItem    `json:"results"`
	Errors   []BatchFailure `json:"errors"`
	Metadata BatchMeta      `json:"metadata"`
}

// BatchExtract fetches up to MaxBatchURLs videos, channels or playlists
// concurrently through the shared governor. Per-URL failures are reported in
// Errors and never fail the batch.
func (c *Client) BatchExtract(ctx context.Context, urls []string, extractType string) (*BatchExtraction, error) {
	if len(urls) > MaxBatchURLs {
		return nil, fmt.Errorf("%w: at most %d urls per batch, got %d", ErrInvalidArgument, MaxBatchURLs, len(urls))
	}
	if extractType == "" {
		extractType = ExtractVideo
	}

	var extract func(context.Context, string) (any, error)
	switch extractType {
	case ExtractVideo:
		extract = func(ctx context.Context, u string) (any, error) { return c.VideoInfo(ctx, u) }
	case ExtractChannel:
		extract = func(ctx context.Context, u string) (any, error) { return c.ChannelInfo(ctx, u) }
	case ExtractPlaylist:
		extract = func(ctx context.Context, u string) (any, error) { return c.PlaylistInfo(ctx, u) }
	default:
		return nil, fmt.Errorf("%w: extract type %q", ErrInvalidArgument, extractType)
	}

	results := governor.RunBatch(ctx, urls, c.gov.Config().BatchConcurrency, extract)

	out := &BatchExtraction{Results: []BatchItem{}, Errors: []BatchFailure{}}
	for _, r := range results {
		if r.Err != nil {
			out.Errors = append(out.Errors, BatchFailure{Index: r.Index, URL: r.Item, Error: r.Err.Error()})
			continue
		}
		out.Results = append(out.Results, BatchItem{Index: r.Index, URL: r.Item, Data: r.Value})
	}

	rate := 0.0
	if len(urls) > 0 {
		rate = round(float64(len(out.Results))/float64(len(urls))*100, 1)
	}
	out.Metadata = BatchMeta{
		TotalURLs:   len(urls),
		Successful:  len(out.Results),
		Failed:      len(out.Errors),
		SuccessRate: rate,
		ExtractType: extractType,
		APISource:   apiSource,
	}
	slog.Info("youtube: batch extract",
		slog.String("type", extractType),
		slog.Int("total", len(urls)),
		slog.Int("failed", len(out.Errors)),
	)
	return out, nil
}
