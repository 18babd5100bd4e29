package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/prospect-cli/internal/model"
)

// FormatReport generates a human-readable run report.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Outreach Report: %s\n", r.RunID)
	if !r.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total processed: %d\n", r.Summary.Attempted)
	fmt.Fprintf(&b, "- Successfully sent: %d\n", r.Summary.Succeeded)
	fmt.Fprintf(&b, "- Failed: %d\n", r.Summary.Failed)
	fmt.Fprintf(&b, "- Skipped: %d\n", r.Summary.Skipped)
	fmt.Fprintf(&b, "- Degraded research: %d\n\n", r.Summary.Degraded)

	b.WriteString("## Leads\n")
	if len(r.Rows) == 0 {
		b.WriteString("No leads processed.\n")
		return b.String()
	}
	for _, row := range r.Rows {
		name := row.Lead.CompanyName
		if strings.TrimSpace(name) == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "%d. %s [%s]", row.Index+1, name, row.State)
		if email := model.Deref(row.Lead.ContactEmail, ""); email != "" {
			fmt.Fprintf(&b, " <%s>", email)
		}
		if row.Degraded {
			b.WriteString(" (degraded)")
		}
		b.WriteString("\n")
		if row.Lead.EmailContent != nil && row.Lead.EmailContent.Subject != "" {
			fmt.Fprintf(&b, "   Subject: %s\n", row.Lead.EmailContent.Subject)
		}
		if row.Error != "" {
			fmt.Fprintf(&b, "   Error: %s\n", row.Error)
		}
	}
	return b.String()
}
