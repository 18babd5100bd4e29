package serpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, `"dentist" "owner"`, q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "Austin, TX", q.Get("location"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results":[
			{"position":1,"title":"Smile Dental","link":"https://smile.example","snippet":"Call 512-555-0100"},
			{"position":2,"title":"Bright Teeth","link":"https://bright.example","snippet":""}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Search(context.Background(), `"dentist" "owner"`, 5, map[string]string{"location": "Austin, TX"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Smile Dental", got[0].Title)
	assert.Equal(t, "https://smile.example", got[0].Link)
	assert.Equal(t, "Call 512-555-0100", got[0].Snippet)
}

func TestSearch_ParamsCannotOverrideQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "real", r.URL.Query().Get("q"))
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		w.Write([]byte(`{"organic_results":[]}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "real", 0, map[string]string{"q": "fake", "engine": "bing"})
	require.NoError(t, err)
}

func TestSearch_NoResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Google hasn't returned any results for this query."}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	got, err := client.Search(context.Background(), "zzz", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_ErrorField(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Invalid API key."}`))
	}))
	defer srv.Close()

	client := NewClient("bad", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "x", 10, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "x", 10, nil)

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "429")
}

func TestSearch_BadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "x", 10, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestSearch_RateLimitedWaitHonorsContext(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"organic_results":[]}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(0.001, 1))
	_, err := client.Search(context.Background(), "first", 1, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Search(ctx, "second", 1, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
