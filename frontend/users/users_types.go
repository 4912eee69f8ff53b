package users

import (
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/lookup"
	"adminconsole/frontend/shared/modal"
	"adminconsole/frontend/shared/paging"
)

// Filters is the settled search of the users screen.
type Filters struct {
	Name  string
	Email string
}

type UserRow struct {
	ID                int64
	Name              string
	Email             string
	RoleID            int
	RoleLabel         string
	AdministratorName string
}

type PageData struct {
	html.Page
	Settings    html.Settings
	Filters     Filters
	Rows        paging.Page[UserRow]
	Sizes       []int
	Phase       string
	ReturnQuery string

	CanCreate       bool
	CanEdit         bool
	CanDelete       bool
	CanViewProjects bool

	Modal *ModalData
}

// ModalData drives the create/edit user dialog.
type ModalData struct {
	Mode        string
	Title       string
	Action      string
	ReturnQuery string
	Form        UserForm
	Errors      modal.FieldErrors
	Error       string
	Admins      []lookup.Option
	AdminField  html.FieldRule
	RoleRules   map[string]html.FieldRule
}

type ProjectRow struct {
	ID        int64
	Name      string
	Desc      string
	OwnerName string
}

type ProjectsPageData struct {
	html.Page
	UserID        int64
	UserName      string
	Rows          []ProjectRow
	CanOpenDetail bool
}
