// Package research enriches leads with a company analysis and a
// qualification score narrative.
package research

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

const (
	analysisMaxTokens = 1000
	scoringMaxTokens  = 300
	temperature       = 0.7
)

// Cache stores completed research keyed by CacheKey. Get returns nil, nil
// on a miss or expired entry.
type Cache interface {
	GetResearch(ctx context.Context, key string) (*model.Research, error)
	PutResearch(ctx context.Context, key string, r model.Research) error
}

// Stage runs the two-call research flow against a reasoning service.
type Stage struct {
	llm   llm.Completer
	cache Cache
	now   func() time.Time
	retry resilience.RetryConfig
}

// Option configures a Stage.
type Option func(*Stage)

// WithCache enables the research cache.
func WithCache(c Cache) Option {
	return func(s *Stage) { s.cache = c }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Stage) { s.now = now }
}

// WithRetry overrides the retry policy used for reasoning calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(s *Stage) { s.retry = cfg }
}

// New creates a research Stage.
func New(c llm.Completer, opts ...Option) *Stage {
	s := &Stage{
		now:   time.Now,
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(s)
	}
	s.llm = llm.WithRetry(c, s.retry)
	return s
}

// Research enriches lead with analysis and scoring. The returned lead is
// always usable downstream:
//   - invalid lead: lead unchanged plus ResearchError, and a *model.ValidationError
//   - reasoning failure: lead unchanged plus ResearchError, and the service error
//   - analysis missing required sections: Research set, ResearchDegraded true, nil error
func (s *Stage) Research(ctx context.Context, lead model.Lead) (model.Lead, error) {
	if err := lead.Validate(); err != nil {
		return withError(lead, err), err
	}

	log := zap.L().With(zap.String("company", lead.CompanyName))
	key := CacheKey(lead)

	if s.cache != nil {
		cached, err := s.cache.GetResearch(ctx, key)
		if err != nil {
			log.Warn("research: cache lookup failed", zap.Error(err))
		} else if cached != nil {
			log.Debug("research: cache hit", zap.String("key", key))
			return applyResearch(lead, *cached, log), nil
		}
	}

	analysisReq := llm.Prompt(analysisPrompt(lead), analysisMaxTokens, temperature)
	analysisReq.System = analystSystem
	analysisReq.Phase = "research_analysis"

	analysis, err := s.llm.Complete(ctx, analysisReq)
	if err != nil {
		err = eris.Wrap(err, "research: analysis")
		log.Warn("research: analysis failed", zap.Error(err))
		return withError(lead, err), err
	}
	analysis = strings.TrimSpace(analysis)

	scoringReq := llm.Prompt(scoringPrompt(analysis), scoringMaxTokens, temperature)
	scoringReq.System = scorerSystem
	scoringReq.Phase = "research_scoring"

	scoring, err := s.llm.Complete(ctx, scoringReq)
	if err != nil {
		err = eris.Wrap(err, "research: scoring")
		log.Warn("research: scoring failed", zap.Error(err))
		return withError(lead, err), err
	}

	r := model.Research{
		Data:      analysis,
		Scoring:   strings.TrimSpace(scoring),
		Timestamp: s.now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.PutResearch(ctx, key, r); err != nil {
			log.Warn("research: cache store failed", zap.Error(err))
		}
	}

	return applyResearch(lead, r, log), nil
}

func applyResearch(lead model.Lead, r model.Research, log *zap.Logger) model.Lead {
	lead.Research = &r
	lead.ResearchError = nil
	if missing := MissingSections(r.Data); len(missing) > 0 {
		log.Warn("research: incomplete analysis", zap.Strings("missing_sections", missing))
		lead.ResearchDegraded = true
	}
	return lead
}

func withError(lead model.Lead, err error) model.Lead {
	msg := err.Error()
	lead.ResearchError = &msg
	return lead
}

// CacheKey identifies a lead's research: the website host without "www."
// when present, otherwise the lower-cased company name.
func CacheKey(lead model.Lead) string {
	if lead.Website != nil {
		if host := normalizeHost(*lead.Website); host != "" {
			return host
		}
	}
	return strings.ToLower(strings.TrimSpace(lead.CompanyName))
}

func normalizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
