package youtube

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Wire types for the Data API v3 responses this client reads.

// flexInt decodes counters the API sends as quoted strings.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return nil // tolerate malformed counters, as the API sometimes hides them
	}
	*n = flexInt(v)
	return nil
}

func (n *flexInt) ptr() *int64 {
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}

// Thumbnail is one preview image.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Thumbnails are keyed by size name: default, medium, high, standard, maxres.
type Thumbnails map[string]Thumbnail

// Best returns the highest resolution thumbnail available.
func (t Thumbnails) Best() (Thumbnail, bool) {
	for _, k := range []string{"maxres", "standard", "high", "medium", "default"} {
		if th, ok := t[k]; ok {
			return th, true
		}
	}
	return Thumbnail{}, false
}

type pageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

type listEnvelope[T any] struct {
	Kind          string   `json:"kind"`
	NextPageToken string   `json:"nextPageToken"`
	PrevPageToken string   `json:"prevPageToken"`
	RegionCode    string   `json:"regionCode"`
	PageInfo      pageInfo `json:"pageInfo"`
	Items         []T      `json:"items"`
}

type apiVideo struct {
	ID      string `json:"id"`
	Snippet *struct {
		PublishedAt  string     `json:"publishedAt"`
		ChannelID    string     `json:"channelId"`
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		Thumbnails   Thumbnails `json:"thumbnails"`
		ChannelTitle string     `json:"channelTitle"`
		Tags         []string   `json:"tags"`
		CategoryID   string     `json:"categoryId"`
		LiveContent  string     `json:"liveBroadcastContent"`
	} `json:"snippet"`
	Statistics *struct {
		ViewCount     *flexInt `json:"viewCount"`
		LikeCount     *flexInt `json:"likeCount"`
		DislikeCount  *flexInt `json:"dislikeCount"`
		CommentCount  *flexInt `json:"commentCount"`
		FavoriteCount *flexInt `json:"favoriteCount"`
	} `json:"statistics"`
	ContentDetails *struct {
		Duration   string `json:"duration"`
		Dimension  string `json:"dimension"`
		Definition string `json:"definition"`
		Caption    string `json:"caption"`
	} `json:"contentDetails"`
	Status *struct {
		PrivacyStatus string `json:"privacyStatus"`
		Embeddable    *bool  `json:"embeddable"`
		MadeForKids   *bool  `json:"madeForKids"`
	} `json:"status"`
}

type apiChannel struct {
	ID      string `json:"id"`
	Snippet *struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		CustomURL   string     `json:"customUrl"`
		PublishedAt string     `json:"publishedAt"`
		Thumbnails  Thumbnails `json:"thumbnails"`
		Country     string     `json:"country"`
	} `json:"snippet"`
	Statistics *struct {
		ViewCount             *flexInt `json:"viewCount"`
		SubscriberCount       *flexInt `json:"subscriberCount"`
		HiddenSubscriberCount bool     `json:"hiddenSubscriberCount"`
		VideoCount            *flexInt `json:"videoCount"`
	} `json:"statistics"`
	ContentDetails *struct {
		RelatedPlaylists map[string]string `json:"relatedPlaylists"`
	} `json:"contentDetails"`
	Status *struct {
		PrivacyStatus string `json:"privacyStatus"`
		MadeForKids   *bool  `json:"madeForKids"`
	} `json:"status"`
	BrandingSettings *struct {
		Channel struct {
			Keywords string `json:"keywords"`
		} `json:"channel"`
	} `json:"brandingSettings"`
}

type apiComment struct {
	ID      string `json:"id"`
	Snippet struct {
		TextDisplay           string          `json:"textDisplay"`
		TextOriginal          string          `json:"textOriginal"`
		AuthorDisplayName     string          `json:"authorDisplayName"`
		AuthorProfileImageURL string          `json:"authorProfileImageUrl"`
		AuthorChannelURL      string          `json:"authorChannelUrl"`
		CanRate               bool            `json:"canRate"`
		LikeCount             flexInt         `json:"likeCount"`
		PublishedAt           string          `json:"publishedAt"`
		UpdatedAt             string          `json:"updatedAt"`
		ParentID              string          `json:"parentId"`
		AuthorChannelID       json.RawMessage `json:"authorChannelId"`
	} `json:"snippet"`
}

type apiCommentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		VideoID         string     `json:"videoId"`
		TopLevelComment apiComment `json:"topLevelComment"`
		CanReply        bool       `json:"canReply"`
		TotalReplyCount flexInt    `json:"totalReplyCount"`
		IsPublic        bool       `json:"isPublic"`
	} `json:"snippet"`
	Replies *struct {
		Comments []apiComment `json:"comments"`
	} `json:"replies"`
}

type apiPlaylist struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		ChannelID    string     `json:"channelId"`
		ChannelTitle string     `json:"channelTitle"`
		PublishedAt  string     `json:"publishedAt"`
		Thumbnails   Thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		ItemCount int64 `json:"itemCount"`
	} `json:"contentDetails"`
	Status *struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

type apiPlaylistItem struct {
	Snippet struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		ChannelTitle string     `json:"channelTitle"`
		PublishedAt  string     `json:"publishedAt"`
		Thumbnails   Thumbnails `json:"thumbnails"`
		Position     int        `json:"position"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

type apiSearchResult struct {
	ID struct {
		Kind       string `json:"kind"`
		VideoID    string `json:"videoId"`
		ChannelID  string `json:"channelId"`
		PlaylistID string `json:"playlistId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  string     `json:"publishedAt"`
		ChannelID    string     `json:"channelId"`
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		Thumbnails   Thumbnails `json:"thumbnails"`
		ChannelTitle string     `json:"channelTitle"`
		LiveContent  string     `json:"liveBroadcastContent"`
	} `json:"snippet"`
}
