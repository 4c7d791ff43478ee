package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// SearchResult is one search.list hit.
type SearchResult struct {
	Type         string     `json:"type"`
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelID    string     `json:"channel_id"`
	ChannelTitle string     `json:"channel_title"`
	PublishedAt  string     `json:"published_at"`
	Thumbnails   Thumbnails `json:"thumbnails,omitempty"`
	LiveContent  string     `json:"live_broadcast_content,omitempty"`
}

// SearchResultsByType groups results by resource type.
type SearchResultsByType struct {
	Videos    []SearchResult `json:"videos"`
	Channels  []SearchResult `json:"channels"`
	Playlists []SearchResult `json:"playlists"`
}

// SearchMeta describes a search response.
type SearchMeta struct {
	SourceInfo
	HasMore bool `json:"has_more"`
}

// SearchResults is the result of Search.
type SearchResults struct {
	Query         string              `json:"query"`
	Results       []SearchResult      `json:"results"`
	ResultsByType SearchResultsByType `json:"results_by_type"`
	TotalResults  int                 `json:"total_results"`
	NextPageToken string              `json:"next_page_token,omitempty"`
	PrevPageToken string              `json:"prev_page_token,omitempty"`
	RegionCode    string              `json:"region_code,omitempty"`
	Metadata      SearchMeta          `json:"metadata"`
}

// Search types accepted by search.list.
const (
	SearchVideo    = "video"
	SearchChannel  = "channel"
	SearchPlaylist = "playlist"
)

const (
	defaultMaxResults = 20
	maxResultsPerPage = 50
)

func newSearchResult(r apiSearchResult) SearchResult {
	out := SearchResult{
		Type:         "unknown",
		Title:        r.Snippet.Title,
		Description:  r.Snippet.Description,
		ChannelID:    r.Snippet.ChannelID,
		ChannelTitle: r.Snippet.ChannelTitle,
		PublishedAt:  r.Snippet.PublishedAt,
		Thumbnails:   r.Snippet.Thumbnails,
		LiveContent:  r.Snippet.LiveContent,
	}
	switch {
	case r.ID.VideoID != "":
		out.Type, out.ID = SearchVideo, r.ID.VideoID
		out.URL = "https://www.youtube.com/watch?v=" + r.ID.VideoID
	case r.ID.ChannelID != "":
		out.Type, out.ID = SearchChannel, r.ID.ChannelID
		out.URL = "https://www.youtube.com/channel/" + r.ID.ChannelID
	case r.ID.PlaylistID != "":
		out.Type, out.ID = SearchPlaylist, r.ID.PlaylistID
		out.URL = "https://www.youtube.com/playlist?list=" + r.ID.PlaylistID
	}
	return out
}

// Search runs one search.list call (100 units on a cache miss).
// maxResults is clamped to 1..50.
func (c *Client) Search(ctx context.Context, query, searchType string, maxResults int) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidArgument)
	}
	if searchType == "" {
		searchType = SearchVideo
	}
	switch searchType {
	case SearchVideo, SearchChannel, SearchPlaylist:
	default:
		return nil, fmt.Errorf("%w: search type %q", ErrInvalidArgument, searchType)
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	maxResults = clampInt(maxResults, 1, maxResultsPerPage)

	params := url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {searchType},
		"maxResults": {strconv.Itoa(maxResults)},
		"order":      {"relevance"},
	}
	op := operation(KindSearch, CostSearch, query, searchType, strconv.Itoa(maxResults))
	resp, err := call[listEnvelope[apiSearchResult]](ctx, c, op, "search", params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := &SearchResults{
		Query:   query,
		Results: make([]SearchResult, 0, len(resp.Items)),
		ResultsByType: SearchResultsByType{
			Videos:    []SearchResult{},
			Channels:  []SearchResult{},
			Playlists: []SearchResult{},
		},
		NextPageToken: resp.NextPageToken,
		PrevPageToken: resp.PrevPageToken,
		RegionCode:    resp.RegionCode,
		Metadata:      SearchMeta{SourceInfo: dataAPI(), HasMore: resp.NextPageToken != ""},
	}
	for _, item := range resp.Items {
		r := newSearchResult(item)
		out.Results = append(out.Results, r)
		switch r.Type {
		case SearchVideo:
			out.ResultsByType.Videos = append(out.ResultsByType.Videos, r)
		case SearchChannel:
			out.ResultsByType.Channels = append(out.ResultsByType.Channels, r)
		case SearchPlaylist:
			out.ResultsByType.Playlists = append(out.ResultsByType.Playlists, r)
		}
	}
	out.TotalResults = len(out.Results)
	slog.Debug("youtube: search", slog.String("query", query), slog.String("type", searchType), slog.Int("results", out.TotalResults))
	return out, nil
}

// TrendingMeta describes a trending response.
type TrendingMeta struct {
	SourceInfo
	Region string `json:"region"`
}

// Trending is the most-popular chart for a region.
type Trending struct {
	Videos       []Video      `json:"videos"`
	TotalResults int          `json:"total_results"`
	Metadata     TrendingMeta `json:"metadata"`
}

// Trending reads the mostPopular chart for a region (one unit on a cache miss).
// Trending entries use the "trending" kind, so their TTL can be set apart.
func (c *Client) Trending(ctx context.Context, region string, maxResults int) (*Trending, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "US"
	}
	if len(region) != 2 {
		return nil, fmt.Errorf("%w: region must be a two-letter country code, got %q", ErrInvalidArgument, region)
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	maxResults = clampInt(maxResults, 1, maxResultsPerPage)

	params := url.Values{
		"part":       {"snippet,statistics,contentDetails"},
		"chart":      {"mostPopular"},
		"regionCode": {region},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	op := operation(KindTrending, CostList, region, strconv.Itoa(maxResults))
	resp, err := call[listEnvelope[apiVideo]](ctx, c, op, "videos", params)
	if err != nil {
		return nil, fmt.Errorf("trending %s: %w", region, err)
	}

	out := &Trending{Videos: make([]Video, 0, len(resp.Items)), Metadata: TrendingMeta{SourceInfo: dataAPI(), Region: region}}
	for _, v := range resp.Items {
		out.Videos = append(out.Videos, newVideo(v))
	}
	out.TotalResults = len(out.Videos)
	return out, nil
}
