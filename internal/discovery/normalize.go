package discovery

import (
	"github.com/sells-group/prospect-cli/internal/contact"
	"github.com/sells-group/prospect-cli/internal/model"
)

// SourceSERP tags leads produced from web search results.
const SourceSERP = "serpapi"

// Normalize converts one raw search hit into a Lead. Contact details are
// extracted from the snippet. A hit without a title yields a Lead with an
// empty CompanyName, which downstream validation rejects.
func Normalize(raw model.RawResult) model.Lead {
	c := contact.Extract(raw.Snippet)
	return model.Lead{
		CompanyName:  raw.Title,
		Website:      model.Str(raw.Link),
		Description:  model.Str(raw.Snippet),
		Source:       model.Str(SourceSERP),
		ContactEmail: c.Email,
		ContactPhone: c.Phone,
	}
}

// NormalizeAll maps Normalize over raws, preserving order.
func NormalizeAll(raws []model.RawResult) []model.Lead {
	leads := make([]model.Lead, 0, len(raws))
	for _, r := range raws {
		leads = append(leads, Normalize(r))
	}
	return leads
}
