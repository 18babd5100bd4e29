package research

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

const analystSystem = "You are a business analyst preparing account research for a sales team."

const scorerSystem = "You score B2B sales leads from account research."

// RequiredSections are the headings a complete analysis must contain.
var RequiredSections = []string{
	"Company Overview",
	"Key Products/Services",
	"Target Market",
	"Pain Points",
}

// ScoringAxes are the dimensions rated 1-10 in the score narrative.
var ScoringAxes = []string{
	"Solution Fit",
	"Pain Point Match",
	"Market Timing",
	"Decision Making Authority",
}

func analysisPrompt(lead model.Lead) string {
	var b strings.Builder
	b.WriteString("Research the company below for an upcoming sales conversation.\n\n")
	fmt.Fprintf(&b, "Company Name: %s\n", lead.CompanyName)
	fmt.Fprintf(&b, "Industry: %s\n", model.Deref(lead.Industry, "unknown"))
	fmt.Fprintf(&b, "Website: %s\n", model.Deref(lead.Website, "unknown"))
	fmt.Fprintf(&b, "Location: %s\n", model.Deref(lead.Location, "unknown"))
	fmt.Fprintf(&b, "Description: %s\n\n", model.Deref(lead.Description, "none provided"))
	b.WriteString("Organize the answer under these headings:\n")
	for i, s := range RequiredSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	n := len(RequiredSections)
	fmt.Fprintf(&b, "%d. Recent News/Developments\n", n+1)
	fmt.Fprintf(&b, "%d. Competitive Advantages\n", n+2)
	fmt.Fprintf(&b, "%d. Potential Use Cases\n", n+3)
	fmt.Fprintf(&b, "%d. Recommended Approach\n", n+4)
	return b.String()
}

func scoringPrompt(analysis string) string {
	var b strings.Builder
	b.WriteString("Using the research below, rate this lead from 1 to 10 on each axis and justify each score in one sentence:\n")
	for i, a := range ScoringAxes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	b.WriteString("\nResearch:\n")
	b.WriteString(analysis)
	return b.String()
}

// MissingSections returns the required headings absent from analysis,
// compared case-insensitively.
func MissingSections(analysis string) []string {
	lower := strings.ToLower(analysis)
	var missing []string
	for _, s := range RequiredSections {
		if !strings.Contains(lower, strings.ToLower(s)) {
			missing = append(missing, s)
		}
	}
	return missing
}
