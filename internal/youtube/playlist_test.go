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
)

const playlistID = "PLrAXtmRdnEQy6nuLMHjMZOz59Oq8HmPME"

// pagedPlaylistItems serves total entries, honouring maxResults and pageToken.
func pagedPlaylistItems(total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		size, _ := strconv.Atoi(q.Get("maxResults"))
		start, _ := strconv.Atoi(q.Get("pageToken"))
		end := min(start+size, total)

		items := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, fmt.Sprintf(
				`{"snippet":{"title":"video %d","position":%d},"contentDetails":{"videoId":"vid%08d"}}`, i, i, i))
		}
		next := ""
		if end < total {
			next = strconv.Itoa(end)
		}
		fmt.Fprintf(w, `{"nextPageToken":%q,"items":[%s]}`, next, strings.Join(items, ","))
	}
}

func TestPlaylistInfo(t *testing.T) {
	api := newFakeAPI(t)
	api.json("playlists", `{"items":[{
	  "id": "`+playlistID+`",
	  "snippet": {"title": "Mix", "channelId": "UC1", "channelTitle": "one"},
	  "contentDetails": {"itemCount": 240},
	  "status": {"privacyStatus": "public"}
	}]}`)
	api.handle("playlistItems", pagedPlaylistItems(240))
	c := newTestClient(t, api, nil)

	p, err := c.PlaylistInfo(context.Background(), "https://www.youtube.com/playlist?list="+playlistID)
	require.NoError(t, err)

	assert.Equal(t, "Mix", p.Title)
	assert.Equal(t, int64(240), p.VideoCount)
	assert.Equal(t, "public", p.PrivacyStatus)
	require.Len(t, p.Videos, MaxPlaylistItems)
	assert.Equal(t, "vid00000099", p.Videos[99].VideoID)
	assert.Equal(t, 99, p.Videos[99].Position)

	assert.Equal(t, 2, api.count("playlistItems"), "two pages of 50")
	assert.Equal(t, 3, quotaUsed(c))
}

func TestPlaylistInfoShortPlaylist(t *testing.T) {
	api := newFakeAPI(t)
	api.json("playlists", `{"items":[{"id":"`+playlistID+`","snippet":{"title":"Short"}}]}`)
	api.handle("playlistItems", pagedPlaylistItems(3))
	c := newTestClient(t, api, nil)

	p, err := c.PlaylistInfo(context.Background(), playlistID)
	require.NoError(t, err)
	assert.Len(t, p.Videos, 3)
	assert.Empty(t, p.PrivacyStatus)
	assert.Equal(t, 1, api.count("playlistItems"))
}

func TestPlaylistInfoErrors(t *testing.T) {
	api := newFakeAPI(t)
	api.json("playlists", `{"items":[]}`)
	c := newTestClient(t, api, nil)

	_, err := c.PlaylistInfo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = c.PlaylistInfo(context.Background(), playlistID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, api.count("playlistItems"))
}
