package youtube

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

func threadJSON(id string, likes int) string {
	return fmt.Sprintf(`{
	  "id": %q,
	  "snippet": {
	    "videoId": "dQw4w9WgXcQ",
	    "canReply": true,
	    "isPublic": true,
	    "totalReplyCount": 1,
	    "topLevelComment": {
	      "id": "%s-top",
	      "snippet": {
	        "textDisplay": "comment %s",
	        "textOriginal": "comment %s",
	        "authorDisplayName": "user-%s",
	        "authorProfileImageUrl": "https://yt3.ggpht.com/a.jpg",
	        "canRate": true,
	        "likeCount": %d,
	        "publishedAt": "2024-01-01T00:00:00Z",
	        "updatedAt": "2024-01-01T00:00:00Z"
	      }
	    }
	  },
	  "replies": {"comments": [{
	    "id": "%s-r1",
	    "snippet": {"textDisplay": "reply", "authorDisplayName": "replier", "likeCount": 0, "parentId": "%s-top", "publishedAt": "2024-01-02T00:00:00Z"}
	  }]}
	}`, id, id, id, id, id, likes, id, id)
}

// pagedComments serves total threads in pages, honouring maxResults and pageToken.
func pagedComments(total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		size, _ := strconv.Atoi(q.Get("maxResults"))
		start, _ := strconv.Atoi(q.Get("pageToken"))
		end := min(start+size, total)

		items := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, threadJSON(fmt.Sprintf("t%d", i), i))
		}
		next := ""
		if end < total {
			next = strconv.Itoa(end)
		}
		fmt.Fprintf(w, `{"nextPageToken":%q,"items":[%s]}`, next, strings.Join(items, ","))
	}
}

func TestNewCommentThread(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("commentThreads", pagedComments(1))
	c := newTestClient(t, api, nil)

	res, err := c.VideoComments(context.Background(), "dQw4w9WgXcQ", 5, "")
	require.NoError(t, err)
	require.Len(t, res.Comments, 1)

	th := res.Comments[0]
	assert.Equal(t, "t0", th.ID)
	assert.Equal(t, "user-t0", th.Author)
	assert.Equal(t, th.TopComment.Text, th.Text)
	assert.False(t, th.TopComment.IsReply)
	require.Len(t, th.Replies, 1)
	assert.True(t, th.Replies[0].IsReply)
	assert.Equal(t, "t0-top", th.Replies[0].ParentID)
	assert.False(t, res.Metadata.HasMore)
	assert.Equal(t, "plainText", api.last().URL.Query().Get("textFormat"))
}

func TestVideoCommentsPaginates(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("commentThreads", pagedComments(250))
	c := newTestClient(t, api, nil)

	res, err := c.VideoComments(context.Background(), "https://youtu.be/dQw4w9WgXcQ", 150, OrderTime)
	require.NoError(t, err)
	assert.Equal(t, 150, res.TotalResults)
	assert.Equal(t, "t149", res.Comments[149].ID)
	assert.True(t, res.Metadata.HasMore)
	assert.Equal(t, "150", res.NextPageToken)
	assert.Equal(t, 2, api.count("commentThreads"), "pages of 100 then 50")
	assert.Equal(t, 2, quotaUsed(c), "one unit per page")
}

func TestVideoCommentsDisabled(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("commentThreads", func(w http.ResponseWriter, _ *http.Request) { apiError(w, 403, "commentsDisabled") })
	c := newTestClient(t, api, nil)

	res, err := c.VideoComments(context.Background(), "dQw4w9WgXcQ", 10, "")
	require.NoError(t, err)
	assert.Empty(t, res.Comments)
	assert.True(t, res.Metadata.CommentsDisabled)
	assert.Equal(t, 1, api.count("commentThreads"))
}

func TestVideoCommentsValidation(t *testing.T) {
	c := newTestClient(t, newFakeAPI(t), nil)
	_, err := c.VideoComments(context.Background(), "nope", 10, "")
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = c.VideoComments(context.Background(), "dQw4w9WgXcQ", 10, "random")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCommentsBatch(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("commentThreads", pagedComments(45))
	c := newTestClient(t, api, nil)

	res, err := c.CommentsBatch(context.Background(), "dQw4w9WgXcQ", 100, 20)
	require.NoError(t, err)
	assert.Equal(t, 45, res.Metadata.TotalExtracted)
	assert.Equal(t, 5, res.Metadata.TotalBatches)
	assert.Equal(t, 3, res.Metadata.BatchesCompleted, "stops on the short third page")
	assert.Equal(t, 60.0, res.Metadata.SuccessRate)

	seen := map[string]bool{}
	for _, th := range res.Comments {
		assert.False(t, seen[th.ID], "duplicate thread %s", th.ID)
		seen[th.ID] = true
	}
}

func TestCommentsBatchClampsBatchSize(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("commentThreads", pagedComments(500))
	c := newTestClient(t, api, nil)

	res, err := c.CommentsBatch(context.Background(), "dQw4w9WgXcQ", 120, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Metadata.BatchSize)
	assert.Equal(t, 120, res.Metadata.TotalExtracted)
	assert.Equal(t, 3, res.Metadata.TotalBatches)
	assert.Equal(t, 100.0, res.Metadata.SuccessRate)
}

func TestCommentsBatchStopsOnQuota(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("commentThreads", pagedComments(500))
	c := newTestClient(t, api, func(cfg *governor.Config) { cfg.DailyQuotaLimit = 2 })

	res, err := c.CommentsBatch(context.Background(), "dQw4w9WgXcQ", 100, 20)
	require.NoError(t, err, "partial results are returned")
	assert.Equal(t, 40, res.Metadata.TotalExtracted)
	assert.Equal(t, 2, res.Metadata.BatchesCompleted)
	assert.Equal(t, 2, api.count("commentThreads"))

	_, err = c.CommentsBatch(context.Background(), "aaaaaaaaaaa", 10, 5)
	assert.ErrorIs(t, err, governor.ErrQuotaExceeded, "nothing collected at all")
}
