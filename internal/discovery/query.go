package discovery

import (
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

const (
	emailHintClause = `("@gmail.com" OR "@yahoo.com" OR "@hotmail.com" OR "@outlook.com" OR "@aol.com")`
	phoneHintClause = `("phone" OR "contact" OR "tel" OR "mobile")`
)

// BuildQuery translates search criteria into a query string and side
// parameters. Clauses are space-joined (implicit AND) in a fixed order:
// quoted keyword, site restriction, quoted position, email hints, phone hints.
// Location never appears in the query; it is returned as the "location" param.
func BuildQuery(c model.SearchCriteria) (string, map[string]string) {
	var clauses []string

	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		clauses = append(clauses, `"`+kw+`"`)
	}
	if site := strings.TrimSpace(c.Website); site != "" {
		clauses = append(clauses, "site:"+site)
	}
	if pos := strings.TrimSpace(c.Position); pos != "" {
		clauses = append(clauses, `"`+pos+`"`)
	}
	if c.IncludeEmailHints {
		clauses = append(clauses, emailHintClause)
	}
	if c.IncludePhoneHints {
		clauses = append(clauses, phoneHintClause)
	}

	params := make(map[string]string)
	if loc := strings.TrimSpace(c.Location); loc != "" {
		params["location"] = loc
	}

	return strings.Join(clauses, " "), params
}
