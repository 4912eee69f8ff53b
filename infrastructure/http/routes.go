package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"adminconsole/frontend/activity"
	"adminconsole/frontend/login"
	"adminconsole/frontend/projects"
	"adminconsole/frontend/users"
	"adminconsole/infrastructure/rbac"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.OperatorCache, login.Options{
		SessionDuration: s.sessionDuration,
		SecureCookie:    s.secureCookie,
	}))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache, s.Screens, s.secureCookie))
}

// RegisterUserRoutes registers the users screens under /console.
func (s *Server) RegisterUserRoutes(r chi.Router) {
	d := users.Deps{API: s.API, Screens: s.Screens, Audit: s.Audit, Settings: s.settings}

	s.Rbac.Grant(rbac.UsersListView, http.MethodGet, "/console/users", rbac.RoleAdmin, rbac.RoleViewer)
	r.Get("/users", users.UsersPageQueryHandler(d))

	s.Rbac.Grant(rbac.UsersCreate, http.MethodPost, "/console/users", rbac.RoleAdmin)
	s.Rbac.Grant(rbac.UsersCreate, http.MethodPost, "/console/users/validate", rbac.RoleAdmin)
	r.Post("/users", users.CreateUserCommandHandler(d))
	r.Post("/users/validate", users.ValidateUserFormHandler())

	s.Rbac.Grant(rbac.UsersEdit, http.MethodPost, "/console/users/{id}", rbac.RoleAdmin)
	r.Post("/users/{id}", users.UpdateUserCommandHandler(d))

	s.Rbac.Grant(rbac.UsersDelete, http.MethodPost, "/console/users/{id}/delete", rbac.RoleAdmin)
	r.Post("/users/{id}/delete", users.DeleteUserCommandHandler(d))

	s.Rbac.Grant(rbac.UserProjectsView, http.MethodGet, "/console/users/{id}/projects", rbac.RoleAdmin, rbac.RoleViewer)
	r.Get("/users/{id}/projects", users.UserProjectsPageQueryHandler(d))
}

// RegisterProjectRoutes registers the projects screens under /console.
func (s *Server) RegisterProjectRoutes(r chi.Router) {
	d := projects.Deps{API: s.API, Screens: s.Screens, Audit: s.Audit, Settings: s.settings}

	s.Rbac.Grant(rbac.ProjectsListView, http.MethodGet, "/console/projects", rbac.RoleAdmin, rbac.RoleViewer)
	r.Get("/projects", projects.ProjectsPageQueryHandler(d))

	s.Rbac.Grant(rbac.ProjectsCreate, http.MethodPost, "/console/projects", rbac.RoleAdmin)
	r.Post("/projects", projects.CreateProjectCommandHandler(d))

	s.Rbac.Grant(rbac.ProjectsEdit, http.MethodPost, "/console/projects/{id}", rbac.RoleAdmin)
	r.Post("/projects/{id}", projects.UpdateProjectCommandHandler(d))

	s.Rbac.Grant(rbac.ProjectsDelete, http.MethodPost, "/console/projects/{id}/delete", rbac.RoleAdmin)
	r.Post("/projects/{id}/delete", projects.DeleteProjectCommandHandler(d))

	s.Rbac.Grant(rbac.ProjectDetailView, http.MethodGet, "/console/projects/{id}", rbac.RoleAdmin, rbac.RoleViewer)
	r.Get("/projects/{id}", projects.ProjectDetailPageQueryHandler(d))

	s.Rbac.Grant(rbac.ProjectAssign, http.MethodPost, "/console/projects/{id}/users", rbac.RoleAdmin)
	r.Post("/projects/{id}/users", projects.AssignUsersCommandHandler(d))

	s.Rbac.Grant(rbac.ProjectUnassign, http.MethodPost, "/console/projects/{id}/users/{userID}/delete", rbac.RoleAdmin)
	r.Post("/projects/{id}/users/{userID}/delete", projects.UnassignUserCommandHandler(d))

	s.Rbac.Grant(rbac.ProjectRosterView, http.MethodGet, "/console/projects/{id}/roster.pdf", rbac.RoleAdmin, rbac.RoleViewer)
	r.Get("/projects/{id}/roster.pdf", projects.ProjectRosterPDFQueryHandler(d))
}

// RegisterActivityRoutes registers the local audit log screen.
func (s *Server) RegisterActivityRoutes(r chi.Router) {
	s.Rbac.Grant(rbac.AuditView, http.MethodGet, "/console/audit", rbac.RoleAdmin, rbac.RoleViewer)
	r.Get("/audit", activity.ActivityPageQueryHandler(s.DB, s.settings))
}
