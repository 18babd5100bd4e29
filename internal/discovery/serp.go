package discovery

import (
	"context"
	"errors"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

// SerpSearcher adapts a SerpAPI client to Searcher. Each search goes
// through the retry policy; rate limiting and server errors are transient.
type SerpSearcher struct {
	client serpapi.Client
	retry  resilience.RetryConfig
}

// NewSerpSearcher wraps client with the given retry policy.
func NewSerpSearcher(client serpapi.Client, cfg resilience.RetryConfig) *SerpSearcher {
	if cfg.OnRetry == nil {
		cfg = cfg.WithLogger("serpapi", "search")
	}
	return &SerpSearcher{client: client, retry: cfg}
}

// Search implements Searcher.
func (s *SerpSearcher) Search(ctx context.Context, query string, maxResults int, params map[string]string) ([]model.RawResult, error) {
	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]model.RawResult, error) {
		hits, err := s.client.Search(ctx, query, maxResults, params)
		if err != nil {
			return nil, classifySearchError(err)
		}
		out := make([]model.RawResult, 0, len(hits))
		for _, h := range hits {
			out = append(out, model.RawResult{Title: h.Title, Link: h.Link, Snippet: h.Snippet})
		}
		return out, nil
	})
}

func classifySearchError(err error) error {
	var apiErr *serpapi.APIError
	if errors.As(err, &apiErr) {
		return resilience.Classify(err, apiErr.StatusCode)
	}
	return resilience.Classify(err, 0)
}
