package model

// LeadState is the position of a lead in the pipeline state machine.
type LeadState string

const (
	StateDiscovered        LeadState = "discovered"
	StateNormalized        LeadState = "normalized"
	StateResearched        LeadState = "researched"
	StateResearchDegraded  LeadState = "research_degraded"
	StateOutreachGenerated LeadState = "outreach_generated"
	StateOutreachSkipped   LeadState = "outreach_skipped"
	StateSent              LeadState = "sent"
	StateSendFailed        LeadState = "send_failed"
)

var transitions = map[LeadState][]LeadState{
	StateDiscovered:        {StateNormalized},
	StateNormalized:        {StateResearched, StateResearchDegraded, StateOutreachSkipped},
	StateResearched:        {StateOutreachGenerated, StateOutreachSkipped},
	StateResearchDegraded:  {StateOutreachGenerated, StateOutreachSkipped},
	StateOutreachGenerated: {StateSent, StateSendFailed, StateOutreachSkipped},
}

// CanAdvance reports whether the state machine allows moving from s to next.
func (s LeadState) CanAdvance(next LeadState) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a final state.
func (s LeadState) Terminal() bool {
	switch s {
	case StateSent, StateSendFailed, StateOutreachSkipped:
		return true
	default:
		return false
	}
}
