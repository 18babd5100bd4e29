// Package store persists pipeline runs and cached research.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrNotFound is returned when a run lookup matches no row.
var ErrNotFound = eris.New("store: not found")

// DefaultListLimit caps ListRuns when the filter sets no limit.
const DefaultListLimit = 100

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source model.RunSource `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for pipeline runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source model.RunSource, criteria *model.SearchCriteria) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, report *model.Report) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Research cache
	GetCachedResearch(ctx context.Context, key string) (*model.Research, error)
	SetCachedResearch(ctx context.Context, key string, r *model.Research, ttl time.Duration) error
	DeleteExpiredResearch(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ResearchCache adapts a Store to the research stage cache with a fixed TTL.
type ResearchCache struct {
	Store Store
	TTL   time.Duration
}

// NewResearchCache returns a cache whose entries expire after ttl.
func NewResearchCache(s Store, ttl time.Duration) *ResearchCache {
	return &ResearchCache{Store: s, TTL: ttl}
}

// GetResearch returns the cached research for key, or nil on a miss.
func (c *ResearchCache) GetResearch(ctx context.Context, key string) (*model.Research, error) {
	return c.Store.GetCachedResearch(ctx, key)
}

// PutResearch stores r under key.
func (c *ResearchCache) PutResearch(ctx context.Context, key string, r model.Research) error {
	if c.TTL <= 0 {
		return nil
	}
	return c.Store.SetCachedResearch(ctx, key, &r, c.TTL)
}
