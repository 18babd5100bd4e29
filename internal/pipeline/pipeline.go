// Package pipeline runs leads through research, outreach, and delivery and
// records one report row per lead.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Row errors recorded for leads that never reach delivery.
const (
	ErrMsgNoContactEmail = "no contact email"
	ErrMsgDryRun         = "dry run"
	ErrMsgDeliveryFailed = "delivery failed"
)

// Researcher enriches a lead. On failure it returns the lead annotated with
// ResearchError alongside the error.
type Researcher interface {
	Research(ctx context.Context, lead model.Lead) (model.Lead, error)
}

// Generator drafts outreach content. A nil result means "do not send".
type Generator interface {
	Generate(ctx context.Context, lead model.Lead) (*model.EmailContent, error)
}

// Sender delivers an email and reports whether it was accepted.
type Sender interface {
	Send(ctx context.Context, recipient, subject, content string) bool
}

// Discoverer produces leads from search criteria.
type Discoverer interface {
	Discover(ctx context.Context, c model.SearchCriteria, maxResults int) ([]model.Lead, error)
}

// Sink receives every finished row, e.g. to sync a CRM. Errors are logged.
type Sink interface {
	Sync(ctx context.Context, row model.ReportRow) error
}

// Pipeline orchestrates the per-lead stages. It processes one lead at a
// time, in input order.
type Pipeline struct {
	research   Researcher
	generator  Generator
	sender     Sender
	discoverer Discoverer
	sinks      []Sink
	dryRun     bool
	now        func() time.Time
	onRow      func(model.ReportRow)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDiscoverer enables RunSearch.
func WithDiscoverer(d Discoverer) Option {
	return func(p *Pipeline) { p.discoverer = d }
}

// WithDryRun generates outreach content but never sends it.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// WithSink adds a row sink.
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, s) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithProgress registers a callback invoked after each row is recorded.
func WithProgress(fn func(model.ReportRow)) Option {
	return func(p *Pipeline) { p.onRow = fn }
}

// New creates a Pipeline.
func New(r Researcher, g Generator, s Sender, opts ...Option) *Pipeline {
	p := &Pipeline{
		research:  r,
		generator: g,
		sender:    s,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// RunSearch discovers leads for c and runs them. Criteria that produce an
// empty query are refused before any search call.
func (p *Pipeline) RunSearch(ctx context.Context, runID string, c model.SearchCriteria, maxResults int) (*model.Report, error) {
	if p.discoverer == nil {
		return nil, eris.New("pipeline: no discoverer configured")
	}
	leads, err := p.discoverer.Discover(ctx, c, maxResults)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: discover")
	}
	return p.RunAs(ctx, runID, leads), nil
}

// Run processes leads under a fresh run ID.
func (p *Pipeline) Run(ctx context.Context, leads []model.Lead) *model.Report {
	return p.RunAs(ctx, uuid.NewString(), leads)
}

// RunAs processes leads and returns a report with exactly one row per lead,
// in input order. Stage failures are recorded on the row and never abort the
// batch. Once ctx is done the remaining leads are recorded as skipped.
func (p *Pipeline) RunAs(ctx context.Context, runID string, leads []model.Lead) *model.Report {
	if runID == "" {
		runID = uuid.NewString()
	}
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run", zap.Int("leads", len(leads)), zap.Bool("dry_run", p.dryRun))

	report := &model.Report{
		RunID:     runID,
		StartedAt: p.now().UTC(),
		Rows:      make([]model.ReportRow, 0, len(leads)),
	}
	report.Summary.Attempted = len(leads)

	for i, in := range leads {
		lead := in.Inputs()
		var o outcome
		if err := ctx.Err(); err != nil {
			o = outcome{row: model.ReportRow{
				Index: i,
				Lead:  lead,
				State: model.StateOutreachSkipped,
				Error: err.Error(),
			}}
		} else {
			o = p.processLead(ctx, i, lead)
		}

		report.Rows = append(report.Rows, o.row)
		tally(&report.Summary, o)
		p.emit(ctx, o.row)
	}

	report.FinishedAt = p.now().UTC()
	log.Info("pipeline: run complete",
		zap.Int("attempted", report.Summary.Attempted),
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("degraded", report.Summary.Degraded),
	)
	return report
}

// outcome is a finished row plus how it counts in the summary.
type outcome struct {
	row    model.ReportRow
	failed bool
}

func tally(s *model.Summary, o outcome) {
	if o.row.Degraded {
		s.Degraded++
	}
	switch {
	case o.row.State == model.StateSent:
		s.Succeeded++
	case o.failed || o.row.State == model.StateSendFailed:
		s.Failed++
	default:
		s.Skipped++
	}
}

func (p *Pipeline) emit(ctx context.Context, row model.ReportRow) {
	for _, s := range p.sinks {
		if err := s.Sync(ctx, row); err != nil {
			zap.L().Warn("pipeline: sink failed",
				zap.String("company", row.Lead.CompanyName),
				zap.Error(err),
			)
		}
	}
	if p.onRow != nil {
		p.onRow(row)
	}
}

// tracker carries one lead through the state machine.
type tracker struct {
	row model.ReportRow
	log *zap.Logger
}

func (t *tracker) advance(next model.LeadState) {
	if !t.row.State.CanAdvance(next) {
		t.log.Error("pipeline: illegal state transition",
			zap.String("from", string(t.row.State)),
			zap.String("to", string(next)),
		)
	}
	t.row.State = next
}

func (p *Pipeline) processLead(ctx context.Context, idx int, lead model.Lead) (o outcome) {
	t := &tracker{
		row: model.ReportRow{Index: idx, Lead: lead, State: model.StateDiscovered},
		log: zap.L().With(zap.String("company", lead.CompanyName), zap.Int("index", idx)),
	}
	t.advance(model.StateNormalized)

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic: %v", r)
			t.log.Error("pipeline: recovered from panic", zap.String("panic", msg))
			t.row.Lead.Error = &msg
			t.row.Error = msg
			if t.row.State == model.StateOutreachGenerated {
				t.row.State = model.StateSendFailed
			} else if !t.row.State.Terminal() {
				t.row.State = model.StateOutreachSkipped
			}
			o = outcome{row: t.row, failed: true}
		}
	}()

	if err := lead.Validate(); err != nil {
		msg := err.Error()
		t.row.Lead.ResearchError = &msg
		t.row.Error = msg
		t.advance(model.StateOutreachSkipped)
		t.log.Warn("pipeline: invalid lead", zap.Error(err))
		return outcome{row: t.row, failed: true}
	}

	researched, err := p.research.Research(ctx, lead)
	t.row.Lead = researched
	switch {
	case err != nil:
		if t.row.Lead.ResearchError == nil {
			msg := err.Error()
			t.row.Lead.ResearchError = &msg
		}
		t.row.Degraded = true
		t.advance(model.StateResearchDegraded)
	case researched.ResearchDegraded:
		t.row.Degraded = true
		t.advance(model.StateResearchDegraded)
	default:
		t.advance(model.StateResearched)
	}

	recipient := model.Deref(t.row.Lead.ContactEmail, "")
	if recipient == "" {
		t.row.Error = ErrMsgNoContactEmail
		t.advance(model.StateOutreachSkipped)
		return outcome{row: t.row}
	}

	email, err := p.generator.Generate(ctx, t.row.Lead)
	if err != nil || email == nil {
		if err == nil {
			err = eris.New("outreach: no content generated")
		}
		t.row.Error = err.Error()
		t.advance(model.StateOutreachSkipped)
		t.log.Warn("pipeline: outreach generation failed", zap.Error(err))
		return outcome{row: t.row}
	}
	t.row.Lead.EmailContent = email
	t.advance(model.StateOutreachGenerated)

	if p.dryRun {
		t.row.Error = ErrMsgDryRun
		t.advance(model.StateOutreachSkipped)
		return outcome{row: t.row}
	}

	sent := p.sender.Send(ctx, recipient, email.Subject, email.Content)
	ts := p.now().UTC()
	t.row.Lead.EmailSent = sent
	t.row.Lead.Timestamp = &ts
	if !sent {
		msg := ErrMsgDeliveryFailed
		t.row.Lead.Error = &msg
		t.row.Error = msg
		t.advance(model.StateSendFailed)
		return outcome{row: t.row}
	}
	t.advance(model.StateSent)
	return outcome{row: t.row}
}
