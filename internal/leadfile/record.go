// Package leadfile reads and writes lead tables as CSV or XLSX. Columns are
// matched by header name; order does not matter, optional columns may be
// missing, and unknown columns are ignored.
package leadfile

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Record is one row of a lead table.
type Record struct {
	CompanyName       string `csv:"company_name"`
	Website           string `csv:"website,omitempty"`
	Description       string `csv:"description,omitempty"`
	Source            string `csv:"source,omitempty"`
	Location          string `csv:"location,omitempty"`
	ContactName       string `csv:"contact_name,omitempty"`
	ContactEmail      string `csv:"contact_email,omitempty"`
	ContactPhone      string `csv:"contact_phone,omitempty"`
	ContactRole       string `csv:"contact_role,omitempty"`
	Industry          string `csv:"industry,omitempty"`
	Tone              string `csv:"tone,omitempty"`
	EmailLength       string `csv:"email_length,omitempty"`
	ValueProp         string `csv:"value_prop,omitempty"`
	ResearchData      string `csv:"research_data,omitempty"`
	ScoringAnalysis   string `csv:"scoring_analysis,omitempty"`
	ResearchTimestamp string `csv:"research_timestamp,omitempty"`
	ResearchError     string `csv:"research_error,omitempty"`
	EmailSubject      string `csv:"email_subject,omitempty"`
	EmailBody         string `csv:"email_body,omitempty"`
	EmailSent         string `csv:"email_sent,omitempty"`
	Timestamp         string `csv:"timestamp,omitempty"`
	State             string `csv:"state,omitempty"`
	Error             string `csv:"error,omitempty"`
}

// Lead converts the record to a lead. Blank cells become nil fields.
func (r Record) Lead() model.Lead {
	l := model.Lead{
		CompanyName:   strings.TrimSpace(r.CompanyName),
		Website:       model.Str(r.Website),
		Description:   model.Str(r.Description),
		Source:        model.Str(r.Source),
		Location:      model.Str(r.Location),
		ContactName:   model.Str(r.ContactName),
		ContactEmail:  model.Str(strings.TrimSpace(r.ContactEmail)),
		ContactPhone:  model.Str(r.ContactPhone),
		ContactRole:   model.Str(r.ContactRole),
		Industry:      model.Str(r.Industry),
		Tone:          model.Str(r.Tone),
		EmailLength:   model.Str(r.EmailLength),
		ValueProp:     model.Str(r.ValueProp),
		ResearchError: model.Str(r.ResearchError),
		Error:         model.Str(r.Error),
	}

	if strings.TrimSpace(r.ResearchData) != "" || strings.TrimSpace(r.ScoringAnalysis) != "" {
		l.Research = &model.Research{Data: r.ResearchData, Scoring: r.ScoringAnalysis}
		if ts, ok := parseTime(r.ResearchTimestamp); ok {
			l.Research.Timestamp = ts
		}
	}
	if strings.TrimSpace(r.EmailSubject) != "" || strings.TrimSpace(r.EmailBody) != "" {
		l.EmailContent = &model.EmailContent{Subject: r.EmailSubject, Content: r.EmailBody}
	}
	if sent, err := strconv.ParseBool(strings.TrimSpace(r.EmailSent)); err == nil {
		l.EmailSent = sent
	}
	if ts, ok := parseTime(r.Timestamp); ok {
		l.Timestamp = &ts
	}
	return l
}

// FromLead flattens a lead into a record.
func FromLead(l model.Lead) Record {
	r := Record{
		CompanyName:   l.CompanyName,
		Website:       model.Deref(l.Website, ""),
		Description:   model.Deref(l.Description, ""),
		Source:        model.Deref(l.Source, ""),
		Location:      model.Deref(l.Location, ""),
		ContactName:   model.Deref(l.ContactName, ""),
		ContactEmail:  model.Deref(l.ContactEmail, ""),
		ContactPhone:  model.Deref(l.ContactPhone, ""),
		ContactRole:   model.Deref(l.ContactRole, ""),
		Industry:      model.Deref(l.Industry, ""),
		Tone:          model.Deref(l.Tone, ""),
		EmailLength:   model.Deref(l.EmailLength, ""),
		ValueProp:     model.Deref(l.ValueProp, ""),
		ResearchError: model.Deref(l.ResearchError, ""),
		EmailSent:     strconv.FormatBool(l.EmailSent),
		Error:         model.Deref(l.Error, ""),
	}
	if l.Research != nil {
		r.ResearchData = l.Research.Data
		r.ScoringAnalysis = l.Research.Scoring
		if !l.Research.Timestamp.IsZero() {
			r.ResearchTimestamp = l.Research.Timestamp.UTC().Format(time.RFC3339)
		}
	}
	if l.EmailContent != nil {
		r.EmailSubject = l.EmailContent.Subject
		r.EmailBody = l.EmailContent.Content
	}
	if l.Timestamp != nil {
		r.Timestamp = l.Timestamp.UTC().Format(time.RFC3339)
	}
	return r
}

// FromRow flattens a report row, carrying its terminal state and error.
func FromRow(row model.ReportRow) Record {
	r := FromLead(row.Lead)
	r.State = string(row.State)
	if row.Error != "" {
		r.Error = row.Error
	}
	return r
}

// FromReport flattens every row of a report in order.
func FromReport(rep *model.Report) []Record {
	out := make([]Record, len(rep.Rows))
	for i, row := range rep.Rows {
		out[i] = FromRow(row)
	}
	return out
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
