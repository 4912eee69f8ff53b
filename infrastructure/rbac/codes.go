package rbac

// Screen permission codes.
const (
	UsersListView    = "USERS_LIST_VIEW"
	UsersCreate      = "USERS_CREATE"
	UsersEdit        = "USERS_EDIT"
	UsersDelete      = "USERS_DELETE"
	UserProjectsView = "USER_PROJECTS_VIEW"

	ProjectsListView  = "PROJECTS_LIST_VIEW"
	ProjectsCreate    = "PROJECTS_CREATE"
	ProjectsEdit      = "PROJECTS_EDIT"
	ProjectsDelete    = "PROJECTS_DELETE"
	ProjectDetailView = "PROJECT_DETAIL_VIEW"
	ProjectAssign     = "PROJECT_ASSIGN"
	ProjectUnassign   = "PROJECT_UNASSIGN"
	ProjectRosterView = "PROJECT_ROSTER_VIEW"

	AuditView = "AUDIT_VIEW"
)
