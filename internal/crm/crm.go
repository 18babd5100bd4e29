// Package crm mirrors contacted leads into Salesforce.
package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/salesforce"
)

const (
	// StatusContacted is the Lead status written after a sent email.
	StatusContacted = "Contacted"

	descriptionLimit = 32000
)

// Syncer upserts Salesforce Lead records for rows whose email was sent.
type Syncer struct {
	client salesforce.Client
	source string
}

// New creates a Syncer. source is written to LeadSource on new records.
func New(c salesforce.Client, source string) *Syncer {
	return &Syncer{client: c, source: source}
}

// Sync implements the pipeline sink. Rows that were not sent, or that have
// no contact email, are ignored.
func (s *Syncer) Sync(ctx context.Context, row model.ReportRow) error {
	if row.State != model.StateSent || row.Lead.ContactEmail == nil {
		return nil
	}
	lead := row.Lead
	email := strings.TrimSpace(*lead.ContactEmail)

	existing, err := salesforce.FindLeadByEmail(ctx, s.client, email)
	if err != nil {
		return eris.Wrap(err, "crm: lookup lead")
	}

	fields := map[string]any{
		"Status":      StatusContacted,
		"Description": description(lead),
	}
	log := zap.L().With(zap.String("company", lead.CompanyName), zap.String("email", email))

	if existing != nil {
		if err := salesforce.UpdateLead(ctx, s.client, existing.ID, fields); err != nil {
			return eris.Wrap(err, "crm: update lead")
		}
		log.Info("crm: lead updated", zap.String("sf_id", existing.ID))
		return nil
	}

	fields["Company"] = lead.CompanyName
	fields["LastName"] = model.Deref(lead.ContactName, "Unknown")
	fields["Email"] = email
	if lead.Website != nil {
		fields["Website"] = *lead.Website
	}
	if lead.ContactPhone != nil {
		fields["Phone"] = *lead.ContactPhone
	}
	if lead.Industry != nil {
		fields["Industry"] = *lead.Industry
	}
	if lead.ContactRole != nil {
		fields["Title"] = *lead.ContactRole
	}
	if s.source != "" {
		fields["LeadSource"] = s.source
	}

	id, err := salesforce.CreateLead(ctx, s.client, fields)
	if err != nil {
		return eris.Wrap(err, "crm: create lead")
	}
	log.Info("crm: lead created", zap.String("sf_id", id))
	return nil
}

func description(l model.Lead) string {
	var sb strings.Builder
	if l.EmailContent != nil {
		fmt.Fprintf(&sb, "Outreach subject: %s\n\n", l.EmailContent.Subject)
	}
	if l.Research != nil {
		if l.Research.Scoring != "" {
			fmt.Fprintf(&sb, "Qualification:\n%s\n\n", l.Research.Scoring)
		}
		if l.Research.Data != "" {
			fmt.Fprintf(&sb, "Research:\n%s\n", l.Research.Data)
		}
	}
	out := strings.TrimSpace(sb.String())
	if len(out) > descriptionLimit {
		out = out[:descriptionLimit]
	}
	return out
}
