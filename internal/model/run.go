package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSource describes where a run's leads came from.
type RunSource string

const (
	RunSourceSearch RunSource = "search"
	RunSourceCSV    RunSource = "csv"
)

// Run is a persisted pipeline execution over one batch of leads.
type Run struct {
	ID        string          `json:"id"`
	Source    RunSource       `json:"source"`
	Criteria  *SearchCriteria `json:"criteria,omitempty"`
	Status    RunStatus       `json:"status"`
	Report    *Report         `json:"report,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Report is the outcome of one batch. It holds exactly one row per input lead,
// in input order.
type Report struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Rows       []ReportRow `json:"rows"`
	Summary    Summary     `json:"summary"`
}

// ReportRow is the terminal record for a single lead.
type ReportRow struct {
	Index    int       `json:"index"`
	Lead     Lead      `json:"lead"`
	State    LeadState `json:"state"`
	Degraded bool      `json:"degraded,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Summary tallies report rows by outcome.
type Summary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Degraded  int `json:"degraded"`
}

// Leads returns the lead of every row, in report order.
func (r *Report) Leads() []Lead {
	out := make([]Lead, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Lead
	}
	return out
}
