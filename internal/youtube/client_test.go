package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

const testKey = "test-key"

// fakeAPI serves canned Data API responses keyed by resource name and counts requests.
type fakeAPI struct {
	mu       sync.Mutex
	t        *testing.T
	handlers map[string]http.HandlerFunc
	hits     map[string]int
	requests []*http.Request
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, handlers: map[string]http.HandlerFunc{}, hits: map[string]int{}}
}

func (f *fakeAPI) handle(resource string, h http.HandlerFunc) { f.handlers[resource] = h }

func (f *fakeAPI) json(resource, body string) {
	f.handle(resource, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resource := strings.TrimPrefix(r.URL.Path, "/")
	f.mu.Lock()
	f.hits[resource]++
	f.requests = append(f.requests, r)
	h, ok := f.handlers[resource]
	f.mu.Unlock()

	if r.URL.Query().Get("key") != testKey {
		f.t.Errorf("%s: missing api key", resource)
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeAPI) count(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[resource]
}

func (f *fakeAPI) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func apiError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s happened","errors":[{"reason":"%s"}]}}`, status, reason, reason)
}

func newTestClient(t *testing.T, api *fakeAPI, mutate func(*governor.Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := governor.DefaultConfig()
	cfg.RequestsPerSecond = 1000
	cfg.RateBurst = 1000
	if mutate != nil {
		mutate(&cfg)
	}
	gov, err := governor.New(cfg)
	require.NoError(t, err)

	c, err := NewClient(ClientConfig{
		APIKey:     testKey,
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		Retry:      RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2},
	}, gov)
	require.NoError(t, err)
	return c
}

func quotaUsed(c *Client) int { return c.Governor().Stats().Quota.Used }

func TestNewClient(t *testing.T) {
	gov, err := governor.New(governor.DefaultConfig())
	require.NoError(t, err)

	_, err = NewClient(ClientConfig{}, gov)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(ClientConfig{APIKey: "k"}, nil)
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{APIKey: "k"}, gov)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultRetryConfig, c.cfg.Retry)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("videos", "abc")
	assert.Equal(t, a, CacheKey("videos", "abc"), "deterministic")
	assert.NotEqual(t, a, CacheKey("videos", "abd"))
	assert.NotEqual(t, CacheKey("a|b"), CacheKey("a", "c"))
	assert.True(t, strings.HasPrefix(a, "yt:"))
	assert.Len(t, a, 3+24)
}

func TestAPIErrorDecoding(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("videos", func(w http.ResponseWriter, _ *http.Request) { apiError(w, 400, "badRequest") })
	c := newTestClient(t, api, nil)

	_, err := c.VideoInfo(context.Background(), "dQw4w9WgXcQ")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "badRequest", apiErr.Reason)
	assert.Equal(t, "badRequest happened", apiErr.Message)
	assert.Equal(t, 1, api.count("videos"), "client errors are not retried")
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("videos", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	})
	c := newTestClient(t, api, nil)

	_, err := c.VideoInfo(context.Background(), "dQw4w9WgXcQ")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Equal(t, 3, api.count("videos"), "502 retried MaxRetries times")
}
