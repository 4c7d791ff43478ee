// Package youtube is a YouTube Data API v3 client whose every request goes
// through a governor.Governor: cached, throttled and charged against the
// daily quota before it reaches the network.
package youtube

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

// DefaultBaseURL is the public Data API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Quota units per Data API method.
const (
	CostList   = 1   // videos, channels, playlists, playlistItems, commentThreads
	CostSearch = 100 // search.list
)

// Operation kinds. They label usage records and select per-kind cache TTLs.
const (
	KindVideos        = "videos"
	KindComments      = "comments"
	KindChannels      = "channels"
	KindChannelSearch = "channel_search"
	KindPlaylists     = "playlists"
	KindPlaylistItems = "playlist_items"
	KindSearch        = "search"
	KindTrending      = "trending"
)

const (
	userAgent   = "go_youtube/1.0"
	apiSource   = "YouTube Data API v3"
	maxErrBytes = 4096
)

// ClientConfig configures the HTTP side of a Client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string       // default DefaultBaseURL
	HTTPClient *http.Client // default 30s timeout
	Retry      RetryConfig  // zero value = DefaultRetryConfig
}

// Client calls the Data API through a Governor.
type Client struct {
	cfg  ClientConfig
	gov  *governor.Governor
	http *http.Client
	now  func() time.Time
}

// NewClient builds a Client. gov is shared with every other consumer of the same quota.
func NewClient(cfg ClientConfig, gov *governor.Governor) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if gov == nil {
		return nil, errors.New("youtube: nil governor")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig
	}
	return &Client{cfg: cfg, gov: gov, http: cfg.HTTPClient, now: time.Now}, nil
}

// Governor returns the governor shared by this client.
func (c *Client) Governor() *governor.Governor { return c.gov }

// CacheKey builds a deterministic cache key from request parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("yt:%x", hash[:12]) // 24-char hex prefix
}

func operation(kind string, cost int, parts ...string) governor.Operation {
	return governor.Operation{
		Kind:     kind,
		Cost:     cost,
		CacheKey: CacheKey(append([]string{kind}, parts...)...),
	}
}

// call performs one governed, retried GET and decodes the body into T.
func call[T any](ctx context.Context, c *Client, op governor.Operation, resource string, params url.Values) (T, error) {
	return RetryDo(ctx, c.cfg.Retry, func() (T, error) {
		return governor.Do(ctx, c.gov, op, func(ctx context.Context) (T, error) {
			var out T
			err := c.fetch(ctx, resource, params, &out)
			return out, err
		})
	})
}

func (c *Client) fetch(ctx context.Context, resource string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/"+resource+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp)
		slog.Debug("youtube: api error", slog.String("resource", resource), slog.Int("status", resp.StatusCode), slog.String("reason", apiErr.Reason))
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", resource, err)
	}
	slog.Debug("youtube: fetched", slog.String("resource", resource), slog.Duration("took", time.Since(start)))
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBytes))
	var eb apiErrorBody
	if err := json.Unmarshal(body, &eb); err != nil || (eb.Error.Message == "" && len(eb.Error.Errors) == 0) {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return eb.toError(resp.StatusCode)
}

// SourceInfo tags every result with where it came from.
type SourceInfo struct {
	APISource string `json:"api_source"`
	Reliable  bool   `json:"reliable"`
}

func dataAPI() SourceInfo { return SourceInfo{APISource: apiSource, Reliable: true} }

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
