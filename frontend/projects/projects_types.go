package projects

import (
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/lookup"
	"adminconsole/frontend/shared/modal"
	"adminconsole/frontend/shared/paging"
)

type ProjectRow struct {
	ID          int64
	Name        string
	Description string
	OwnerName   string
}

type PageData struct {
	html.Page
	Settings    html.Settings
	Filters     Filters
	Rows        paging.Page[ProjectRow]
	Sizes       []int
	Phase       string
	ReturnQuery string

	CanCreate     bool
	CanEdit       bool
	CanDelete     bool
	CanOpenDetail bool

	Modal *ModalData
}

// ModalData drives the create/edit project dialog.
type ModalData struct {
	Mode        string
	Title       string
	Action      string
	ReturnQuery string
	Form        ProjectForm
	Errors      modal.FieldErrors
	Error       string
	Admins      []lookup.Option
}

type MemberRow struct {
	ID    int64
	Name  string
	Email string
}

type DetailPageData struct {
	html.Page
	ProjectID   int64
	Name        string
	Description string
	OwnerName   string
	Members     []MemberRow
	Loaded      bool

	CanAssign   bool
	CanUnassign bool
	CanRoster   bool

	Assign *AssignModalData
}

// AssignModalData lists the users that can still be added to the project.
type AssignModalData struct {
	ProjectID int64
	Available []MemberRow
	Selected  []int64
	Error     string
}

// Checked reports whether id was part of the last submission.
func (m AssignModalData) Checked(id int64) bool {
	for _, s := range m.Selected {
		if s == id {
			return true
		}
	}
	return false
}
