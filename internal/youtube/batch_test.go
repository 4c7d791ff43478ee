package youtube

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

func TestBatchExtractVideos(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("videos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "missingvid1" {
			fmt.Fprint(w, `{"items":[]}`)
			return
		}
		fmt.Fprint(w, videoFixture)
	})
	c := newTestClient(t, api, nil)

	urls := []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"not a url",
		"missingvid1",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	res, err := c.BatchExtract(context.Background(), urls, "")
	require.NoError(t, err)

	assert.Equal(t, ExtractVideo, res.Metadata.ExtractType)
	assert.Equal(t, 4, res.Metadata.TotalURLs)
	assert.Equal(t, 2, res.Metadata.Successful)
	assert.Equal(t, 2, res.Metadata.Failed)
	assert.Equal(t, 50.0, res.Metadata.SuccessRate)

	require.Len(t, res.Results, 2)
	assert.Equal(t, 0, res.Results[0].Index)
	assert.Equal(t, 3, res.Results[1].Index)
	v, ok := res.Results[0].Data.(*Video)
	require.True(t, ok)
	assert.Equal(t, "dQw4w9WgXcQ", v.ID)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "not a url", res.Errors[0].URL)
	assert.Contains(t, res.Errors[1].Error, "not found")
}

func TestBatchExtractChannels(t *testing.T) {
	api := newFakeAPI(t)
	api.json("channels", channelFixture)
	c := newTestClient(t, api, func(cfg *governor.Config) { cfg.BatchConcurrency = 1 })

	res, err := c.BatchExtract(context.Background(), []string{"@RickAstleyYT", "UCuAXFkgsw1L7xaCfnd5JJOw"}, ExtractChannel)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metadata.Successful)
	assert.IsType(t, &Channel{}, res.Results[1].Data)
}

func TestBatchExtractValidation(t *testing.T) {
	c := newTestClient(t, newFakeAPI(t), nil)

	urls := make([]string, MaxBatchURLs+1)
	for i := range urls {
		urls[i] = "dQw4w9WgXcQ"
	}
	_, err := c.BatchExtract(context.Background(), urls, ExtractVideo)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.BatchExtract(context.Background(), []string{"dQw4w9WgXcQ"}, "comments")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	res, err := c.BatchExtract(context.Background(), nil, ExtractVideo)
	require.NoError(t, err)
	assert.Zero(t, res.Metadata.SuccessRate)
	assert.Zero(t, quotaUsed(c))
}
