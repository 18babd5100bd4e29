package model

import (
	"strings"
	"time"
)

// Lead is a candidate prospect flowing through the enrichment pipeline.
// Fields are added by successive stages and never removed.
type Lead struct {
	CompanyName string `json:"company_name"`

	// Discovery attributes.
	Website     *string `json:"website,omitempty"`
	Description *string `json:"description,omitempty"`
	Source      *string `json:"source,omitempty"`
	Location    *string `json:"location,omitempty"`

	// Contact attributes. Nil means "not found".
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`

	// Classification attributes.
	Industry    *string `json:"industry,omitempty"`
	ContactRole *string `json:"contact_role,omitempty"`

	// Outreach customization carried from input files.
	Tone        *string `json:"tone,omitempty"`
	EmailLength *string `json:"email_length,omitempty"`
	ValueProp   *string `json:"value_prop,omitempty"`

	// Set by the research stage only.
	Research         *Research `json:"research,omitempty"`
	ResearchError    *string   `json:"research_error,omitempty"`
	ResearchDegraded bool      `json:"research_degraded,omitempty"`

	// Set by the outreach stage only.
	EmailContent *EmailContent `json:"email_content,omitempty"`
	EmailSent    bool          `json:"email_sent"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Error        *string       `json:"error,omitempty"`
}

// Research holds the output of the research stage.
type Research struct {
	Data      string    `json:"research_data"`
	Scoring   string    `json:"scoring_analysis"`
	Timestamp time.Time `json:"research_timestamp"`
}

// EmailContent is a generated subject and body pair.
type EmailContent struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// Validate checks the lead identity invariant.
func (l Lead) Validate() error {
	if strings.TrimSpace(l.CompanyName) == "" {
		return &ValidationError{Field: "company_name", Reason: "missing required field"}
	}
	return nil
}

// Inputs returns a copy of l without any research or outreach output, so a
// lead read back from an exported table starts the pipeline clean.
func (l Lead) Inputs() Lead {
	l.Research = nil
	l.ResearchError = nil
	l.ResearchDegraded = false
	l.EmailContent = nil
	l.EmailSent = false
	l.Timestamp = nil
	l.Error = nil
	return l
}

// Str returns a pointer to s, or nil when s is blank.
func Str(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or def when p is nil or blank.
func Deref(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return *p
}

// SearchCriteria is the transient input to the query builder.
type SearchCriteria struct {
	Keyword           string `json:"keyword,omitempty"`
	Website           string `json:"website,omitempty"`
	Location          string `json:"location,omitempty"`
	Position          string `json:"position,omitempty"`
	IncludeEmailHints bool   `json:"include_email_hints,omitempty"`
	IncludePhoneHints bool   `json:"include_phone_hints,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (c SearchCriteria) IsEmpty() bool {
	return strings.TrimSpace(c.Keyword) == "" &&
		strings.TrimSpace(c.Website) == "" &&
		strings.TrimSpace(c.Location) == "" &&
		strings.TrimSpace(c.Position) == "" &&
		!c.IncludeEmailHints &&
		!c.IncludePhoneHints
}

// RawResult is one organic hit returned by the search service.
type RawResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
