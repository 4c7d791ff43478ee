package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

// Comment is a top-level comment or a reply.
type Comment struct {
	ID                 string `json:"id"`
	Author             string `json:"author"`
	Text               string `json:"text"`
	TextOriginal       string `json:"text_original,omitempty"`
	Likes              int64  `json:"likes"`
	PublishedAt        string `json:"published_at"`
	UpdatedAt          string `json:"updated_at,omitempty"`
	AuthorChannelURL   string `json:"author_channel_url,omitempty"`
	AuthorProfileImage string `json:"author_profile_image,omitempty"`
	CanRate            bool   `json:"can_rate"`
	IsReply            bool   `json:"is_reply"`
	ParentID           string `json:"parent_id,omitempty"`
}

// CommentThread is a top-level comment with the replies the API returned inline.
type CommentThread struct {
	ID              string    `json:"id"`
	VideoID         string    `json:"video_id"`
	TopComment      Comment   `json:"top_comment"`
	CanReply        bool      `json:"can_reply"`
	IsPublic        bool      `json:"is_public"`
	TotalReplyCount int64     `json:"total_reply_count"`
	Replies         []Comment `json:"replies"`

	// Copied from TopComment for quick scanning.
	Author      string `json:"author"`
	Text        string `json:"text"`
	Likes       int64  `json:"likes"`
	PublishedAt string `json:"published_at"`
}

// CommentsMeta describes a comments response.
type CommentsMeta struct {
	SourceInfo
	HasMore          bool `json:"has_more"`
	CommentsDisabled bool `json:"comments_disabled,omitempty"`
}

// Comments is the result of VideoComments.
type Comments struct {
	VideoID       string          `json:"video_id"`
	Comments      []CommentThread `json:"comments"`
	TotalResults  int             `json:"total_results"`
	NextPageToken string          `json:"next_page_token,omitempty"`
	Metadata      CommentsMeta    `json:"metadata"`
}

// Comment orderings accepted by commentThreads.list.
const (
	OrderRelevance = "relevance"
	OrderTime      = "time"
)

const (
	defaultMaxComments = 20
	commentsPageSize   = 100
)

func newComment(c apiComment) Comment {
	sn := c.Snippet
	return Comment{
		ID:                 c.ID,
		Author:             sn.AuthorDisplayName,
		Text:               sn.TextDisplay,
		TextOriginal:       sn.TextOriginal,
		Likes:              int64(sn.LikeCount),
		PublishedAt:        sn.PublishedAt,
		UpdatedAt:          sn.UpdatedAt,
		AuthorChannelURL:   sn.AuthorChannelURL,
		AuthorProfileImage: sn.AuthorProfileImageURL,
		CanRate:            sn.CanRate,
		IsReply:            sn.ParentID != "",
		ParentID:           sn.ParentID,
	}
}

func newCommentThread(t apiCommentThread) CommentThread {
	top := newComment(t.Snippet.TopLevelComment)
	out := CommentThread{
		ID:              t.ID,
		VideoID:         t.Snippet.VideoID,
		TopComment:      top,
		CanReply:        t.Snippet.CanReply,
		IsPublic:        t.Snippet.IsPublic,
		TotalReplyCount: int64(t.Snippet.TotalReplyCount),
		Replies:         []Comment{},
		Author:          top.Author,
		Text:            top.Text,
		Likes:           top.Likes,
		PublishedAt:     top.PublishedAt,
	}
	if t.Replies != nil {
		for _, r := range t.Replies.Comments {
			out.Replies = append(out.Replies, newComment(r))
		}
	}
	return out
}

// commentsPage fetches one commentThreads page. Each page is its own governed call.
func (c *Client) commentsPage(ctx context.Context, videoID, order, pageToken string, size int) (listEnvelope[apiCommentThread], error) {
	params := url.Values{
		"part":       {"snippet,replies"},
		"videoId":    {videoID},
		"maxResults": {strconv.Itoa(size)},
		"order":      {order},
		"textFormat": {"plainText"},
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	op := operation(KindComments, CostList, videoID, order, pageToken, strconv.Itoa(size))
	return call[listEnvelope[apiCommentThread]](ctx, c, op, "commentThreads", params)
}

// VideoComments pages through comment threads until max threads are collected.
// A video with comments turned off yields an empty result, not an error.
func (c *Client) VideoComments(ctx context.Context, rawURL string, maxComments int, order string) (*Comments, error) {
	id := ExtractVideoID(rawURL)
	if id == "" {
		return nil, fmt.Errorf("%w: no video id in %q", ErrInvalidURL, rawURL)
	}
	if maxComments <= 0 {
		maxComments = defaultMaxComments
	}
	if order == "" {
		order = OrderRelevance
	}
	if order != OrderRelevance && order != OrderTime {
		return nil, fmt.Errorf("%w: order must be %q or %q", ErrInvalidArgument, OrderRelevance, OrderTime)
	}

	out := &Comments{VideoID: id, Comments: []CommentThread{}, Metadata: CommentsMeta{SourceInfo: dataAPI()}}
	token := ""
	for len(out.Comments) < maxComments {
		page, err := c.commentsPage(ctx, id, order, token, min(commentsPageSize, maxComments-len(out.Comments)))
		if err != nil {
			if IsCommentsDisabled(err) {
				slog.Warn("youtube: comments disabled", slog.String("video", id))
				out.Metadata.CommentsDisabled = true
				break
			}
			return nil, fmt.Errorf("comments for %s: %w", id, err)
		}
		for _, t := range page.Items {
			out.Comments = append(out.Comments, newCommentThread(t))
		}
		token = page.NextPageToken
		if token == "" || len(page.Items) == 0 {
			break
		}
	}

	if len(out.Comments) > maxComments {
		out.Comments = out.Comments[:maxComments]
	}
	out.TotalResults = len(out.Comments)
	out.NextPageToken = token
	out.Metadata.HasMore = token != ""
	slog.Debug("youtube: comments", slog.String("video", id), slog.Int("count", out.TotalResults))
	return out, nil
}

// CommentsBatchMeta reports how a batched comment fetch went.
type CommentsBatchMeta struct {
	SourceInfo
	TotalExtracted   int     `json:"total_extracted"`
	TotalDesired     int     `json:"total_desired"`
	BatchesCompleted int     `json:"batches_completed"`
	TotalBatches     int     `json:"total_batches"`
	SuccessRate      float64 `json:"success_rate"`
	BatchSize        int     `json:"batch_size"`
}

// CommentsBatch is the result of CommentsBatch.
type CommentsBatch struct {
	VideoID  string            `json:"video_id"`
	Comments []CommentThread   `json:"comments"`
	Metadata CommentsBatchMeta `json:"metadata"`
}

const (
	defaultBatchTotal = 100
	defaultBatchSize  = 20
	maxBatchSize      = 50
)

// CommentsBatch collects up to totalDesired threads in pages of batchSize,
// following page tokens. A failed page is logged and retried as the next batch;
// quota exhaustion or cancellation stops the run and keeps what was collected.
func (c *Client) CommentsBatch(ctx context.Context, rawURL string, totalDesired, batchSize int) (*CommentsBatch, error) {
	id := ExtractVideoID(rawURL)
	if id == "" {
		return nil, fmt.Errorf("%w: no video id in %q", ErrInvalidURL, rawURL)
	}
	if totalDesired <= 0 {
		totalDesired = defaultBatchTotal
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	batchSize = clampInt(batchSize, 1, maxBatchSize)
	totalBatches := int(math.Ceil(float64(totalDesired) / float64(batchSize)))

	out := &CommentsBatch{VideoID: id, Comments: []CommentThread{}}
	var lastErr error
	completed := 0
	token := ""
	for batch := 0; batch < totalBatches; batch++ {
		want := min(batchSize, totalDesired-len(out.Comments))
		if want <= 0 {
			break
		}
		page, err := c.commentsPage(ctx, id, OrderRelevance, token, want)
		if err != nil {
			if IsCommentsDisabled(err) {
				completed++
				break
			}
			lastErr = err
			slog.Warn("youtube: comment batch failed", slog.String("video", id), slog.Int("batch", batch+1), slog.Any("error", err))
			if errors.Is(err, governor.ErrQuotaExceeded) || errors.Is(err, governor.ErrCancelled) || ctx.Err() != nil {
				break
			}
			continue
		}
		completed++
		for _, t := range page.Items {
			out.Comments = append(out.Comments, newCommentThread(t))
		}
		token = page.NextPageToken
		if len(page.Items) < want || token == "" {
			break
		}
	}

	if completed == 0 && lastErr != nil {
		return nil, fmt.Errorf("comments batch for %s: %w", id, lastErr)
	}
	if len(out.Comments) > totalDesired {
		out.Comments = out.Comments[:totalDesired]
	}
	out.Metadata = CommentsBatchMeta{
		SourceInfo:       dataAPI(),
		TotalExtracted:   len(out.Comments),
		TotalDesired:     totalDesired,
		BatchesCompleted: completed,
		TotalBatches:     totalBatches,
		SuccessRate:      round(float64(completed)/float64(totalBatches)*100, 1),
		BatchSize:        batchSize,
	}
	return out, nil
}
