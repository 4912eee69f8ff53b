package projects

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"adminconsole/frontend/shared/lookup"
	"adminconsole/infrastructure/api"
)

// Filters is the settled search of the projects screen. The backend list
// takes no query, so both fields are matched here.
type Filters struct {
	Name  string
	Owner string
}

func (f Filters) empty() bool {
	return strings.TrimSpace(f.Name) == "" && strings.TrimSpace(f.Owner) == ""
}

// FilterProjects keeps the projects whose name matches f.Name and whose
// administrator name matches f.Owner. Matching is a case and accent
// insensitive subsequence match.
func FilterProjects(projects []api.Project, admins lookup.AdminNames, f Filters) []api.Project {
	if f.empty() {
		return projects
	}
	name := strings.TrimSpace(f.Name)
	owner := strings.TrimSpace(f.Owner)
	out := make([]api.Project, 0, len(projects))
	for _, p := range projects {
		if name != "" && !fuzzy.MatchNormalizedFold(name, p.Name) {
			continue
		}
		if owner != "" && !fuzzy.MatchNormalizedFold(owner, admins.Name(p.AdministratorID)) {
			continue
		}
		out = append(out, p)
	}
	return out
}
