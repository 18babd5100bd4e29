// Package serpapi provides a client for the SerpAPI Google search endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://serpapi.com"

// Client defines the SerpAPI search operation.
type Client interface {
	// Search runs a Google search and returns the organic results.
	Search(ctx context.Context, query string, num int, params map[string]string) ([]OrganicResult, error)
}

// OrganicResult is one entry of organic_results.
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serpapi: status %d: %s", e.StatusCode, e.Body)
}

// Option configures the SerpAPI client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *httpClient) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search implements Client. Extra params are passed through verbatim and
// cannot override engine, q, num, or api_key.
func (c *httpClient) Search(ctx context.Context, query string, num int, params map[string]string) ([]OrganicResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "serpapi: rate limit wait")
		}
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("engine", "google")
	q.Set("q", query)
	if num > 0 {
		q.Set("num", strconv.Itoa(num))
	}
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "serpapi: decode response")
	}
	// SerpAPI reports "no results" as an error string on a 200 response.
	if sr.Error != "" && len(sr.OrganicResults) == 0 {
		if isNoResults(sr.Error) {
			return nil, nil
		}
		return nil, eris.Errorf("serpapi: %s", sr.Error)
	}
	return sr.OrganicResults, nil
}

func isNoResults(msg string) bool {
	return strings.HasPrefix(msg, "Google hasn't returned any results")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
