package nav

import (
	"adminconsole/infrastructure/rbac"
	"adminconsole/models"
)

// Link is one entry of the top navigation.
type Link struct {
	Label  string
	Href   string
	Active bool
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Username string
	Role     string
	Links    []Link
}

var links = []struct {
	code  string
	label string
	href  string
}{
	{rbac.UsersListView, "Usuarios", "/console/users"},
	{rbac.ProjectsListView, "Proyectos", "/console/projects"},
	{rbac.AuditView, "Actividad", "/console/audit"},
}

// BuildTopNavData lists the screens the session may open. active is the
// href of the current section.
func BuildTopNavData(session models.Session, active string) TopNavData {
	data := TopNavData{Username: session.Operator.Username, Role: session.Operator.Role}
	for _, l := range links {
		if session.Can(l.code) {
			data.Links = append(data.Links, Link{Label: l.label, Href: l.href, Active: l.href == active})
		}
	}
	return data
}
