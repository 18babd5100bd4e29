// Package discovery turns search criteria into normalized leads via a web
// search service.
package discovery

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrEmptyQuery is returned when the criteria produce no query clauses.
var ErrEmptyQuery = eris.New("discovery: empty query")

// DefaultMaxResults is used when the caller does not bound the result count.
const DefaultMaxResults = 10

// Searcher is a web search service returning organic hits.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, params map[string]string) ([]model.RawResult, error)
}

// Discoverer runs a search and normalizes the hits into leads.
type Discoverer struct {
	searcher Searcher
}

// New creates a Discoverer backed by s.
func New(s Searcher) *Discoverer {
	return &Discoverer{searcher: s}
}

// Discover builds the query for c, searches, and normalizes the results.
// Criteria that yield an empty query string are refused with ErrEmptyQuery
// without contacting the search service. A nil result set is treated as
// empty.
func (d *Discoverer) Discover(ctx context.Context, c model.SearchCriteria, maxResults int) ([]model.Lead, error) {
	query, params := BuildQuery(c)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	log := zap.L().With(zap.String("query", query))
	log.Info("discovery: searching", zap.Int("max_results", maxResults))

	raws, err := d.searcher.Search(ctx, query, maxResults, params)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: search")
	}

	leads := NormalizeAll(raws)
	log.Info("discovery: normalized results", zap.Int("leads", len(leads)))
	return leads, nil
}
