package projects

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	sessioncontext "adminconsole/frontend/shared/context"
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/lookup"
	"adminconsole/frontend/shared/modal"
	"adminconsole/frontend/shared/paging"
	"adminconsole/frontend/shared/viewstate"
	"adminconsole/infrastructure/api"
	"adminconsole/infrastructure/audit"
	"adminconsole/infrastructure/rbac"
)

const (
	screenProjects = "projects"
	screenAdmins   = "projects.admins"

	listPath = "/console/projects"

	msgLoadFailed   = "Error al cargar proyectos"
	msgUnexpected   = "Ocurrió un error inesperado. Por favor, intenta nuevamente."
	msgDeleteFailed = "Error al eliminar el proyecto"
	msgInvalidForm  = "Por favor completa todos los campos"
)

// Deps are the collaborators of the projects screens.
type Deps struct {
	API      *api.Client
	Screens  *viewstate.Registry
	Audit    *audit.Service
	Settings html.Settings
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

type listState struct {
	filters  Filters
	projects viewstate.Snapshot[[]api.Project]
	admins   lookup.AdminNames
	err      error
}

func (d Deps) projectsScreen(ctx context.Context) *viewstate.Screen[[]api.Project] {
	return viewstate.Get[[]api.Project](d.Screens, sessioncontext.SessionID(ctx), screenProjects)
}

func (d Deps) adminsScreen(ctx context.Context) *viewstate.Screen[[]api.User] {
	return viewstate.Get[[]api.User](d.Screens, sessioncontext.SessionID(ctx), screenAdmins)
}

func (d Deps) settleFilters(r *http.Request) Filters {
	screen := d.projectsScreen(r.Context())
	q := r.URL.Query()
	settled := map[string]string{}
	for _, key := range []string{"nombre", "owner"} {
		if q.Has(key) {
			settled[key] = strings.TrimSpace(q.Get(key))
		}
	}
	screen.MergeFilters(settled)
	f := screen.Snapshot().Filters
	return Filters{Name: f["nombre"], Owner: f["owner"]}
}

// loadAdmins refreshes the administrator lookup. A failed fetch keeps the
// names of the last successful one.
func (d Deps) loadAdmins(ctx context.Context) lookup.AdminNames {
	snap, err := d.adminsScreen(ctx).Load(ctx, d.API.Users.ListAdministrators)
	if err != nil && ctx.Err() == nil {
		slog.Warn("load administrators", slog.Any("err", err))
	}
	return lookup.BuildAdminNames(snap.Data)
}

// loadList fetches projects and administrators concurrently and
// independently of each other.
func (d Deps) loadList(r *http.Request) listState {
	ctx := r.Context()
	state := listState{filters: d.settleFilters(r)}

	var g errgroup.Group
	g.Go(func() error {
		state.projects, state.err = d.projectsScreen(ctx).Load(ctx, d.API.Projects.List)
		return nil
	})
	g.Go(func() error {
		state.admins = d.loadAdmins(ctx)
		return nil
	})
	_ = g.Wait()
	return state
}

func (d Deps) currentList(r *http.Request) listState {
	projects := d.projectsScreen(r.Context()).Snapshot()
	if !projects.HasData {
		return d.loadList(r)
	}
	f := projects.Filters
	return listState{
		filters:  Filters{Name: f["nombre"], Owner: f["owner"]},
		projects: projects,
		admins:   lookup.BuildAdminNames(d.adminsScreen(r.Context()).Snapshot().Data),
	}
}

func (d Deps) pageData(r *http.Request, state listState) PageData {
	ctx := r.Context()
	page, size := paging.Parse(r.URL.Query(), d.Settings.PageSize)

	matched := FilterProjects(state.projects.Data, state.admins, state.filters)
	rows := make([]ProjectRow, 0, len(matched))
	for _, p := range matched {
		rows = append(rows, ProjectRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			OwnerName:   state.admins.Name(p.AdministratorID),
		})
	}

	data := PageData{
		Page:          html.NewPage(r, "Gestión de proyectos", listPath, d.Settings),
		Settings:      d.Settings,
		Filters:       state.filters,
		Rows:          paging.Window(rows, page, size),
		Sizes:         paging.Sizes,
		Phase:         state.projects.Phase.String(),
		ReturnQuery:   html.ReturnQuery(r.URL.Query()),
		CanCreate:     sessioncontext.Can(ctx, rbac.ProjectsCreate),
		CanEdit:       sessioncontext.Can(ctx, rbac.ProjectsEdit),
		CanDelete:     sessioncontext.Can(ctx, rbac.ProjectsDelete),
		CanOpenDetail: sessioncontext.Can(ctx, rbac.ProjectDetailView),
	}
	if state.err != nil && data.Error == "" {
		data.Error = api.Message(state.err, msgLoadFailed)
	}
	return data
}

func newModal(mode, returnQuery string, f ProjectForm, id int64) *ModalData {
	m := &ModalData{Mode: mode, ReturnQuery: returnQuery, Form: f}
	if mode == "create" {
		m.Title = "Crear proyecto"
		m.Action = listPath
	} else {
		m.Title = "Editar proyecto"
		m.Action = listPath + "/" + strconv.FormatInt(id, 10)
	}
	return m
}

func findProject(projects []api.Project, id int64) (api.Project, bool) {
	i := slices.IndexFunc(projects, func(p api.Project) bool { return p.ID == id })
	if i < 0 {
		return api.Project{}, false
	}
	return projects[i], true
}

// ProjectsPageQueryHandler renders the projects list, with the create or
// edit dialog when ?modal= asks for it.
func ProjectsPageQueryHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := d.loadList(r)
		if errors.Is(state.err, context.Canceled) {
			return
		}
		data := d.pageData(r, state)

		q := r.URL.Query()
		switch q.Get("modal") {
		case "create":
			if data.CanCreate {
				data.Modal = newModal("create", data.ReturnQuery, ProjectForm{}, 0)
				data.Modal.Admins = state.admins.Options()
			}
		case "edit":
			id, _ := strconv.ParseInt(q.Get("id"), 10, 64)
			p, ok := findProject(state.projects.Data, id)
			switch {
			case !data.CanEdit:
			case !ok:
				data.Error = "Proyecto no encontrado"
			default:
				data.Modal = newModal("edit", data.ReturnQuery, formFromProject(p), id)
				data.Modal.Admins = state.admins.Options()
			}
		}

		html.Write(w, r, http.StatusOK, ProjectsPage(data))
	}
}

func (d Deps) renderModal(w http.ResponseWriter, r *http.Request, status int, m *ModalData) {
	state := d.currentList(r)
	if errors.Is(state.err, context.Canceled) {
		return
	}
	m.Admins = state.admins.Options()
	data := d.pageData(r, state)
	data.ReturnQuery = m.ReturnQuery
	data.Modal = m
	html.Write(w, r, status, ProjectsPage(data))
}

func (d Deps) submit(w http.ResponseWriter, r *http.Request, m *ModalData, decodeErrs modal.FieldErrors, fn modal.SubmitFunc[ProjectForm]) (string, bool) {
	if len(decodeErrs) > 0 {
		m.Errors = check(m.Form, decodeErrs)
		m.Error = msgInvalidForm
		d.renderModal(w, r, http.StatusUnprocessableEntity, m)
		return "", false
	}

	flow := modal.New(m.Form)
	switch flow.Run(r.Context(), fn) {
	case modal.ClosedSuccess:
		return flow.Result, true
	case modal.Open:
		m.Errors = flow.Errors
		if flow.Err == nil {
			m.Error = msgInvalidForm
			d.renderModal(w, r, http.StatusUnprocessableEntity, m)
			return "", false
		}
		if r.Context().Err() != nil {
			return "", false
		}
		slog.Error("project mutation failed", slog.String("mode", m.Mode), slog.Any("err", flow.Err))
		m.Error = api.Message(flow.Err, msgUnexpected)
		d.renderModal(w, r, http.StatusBadGateway, m)
	}
	return "", false
}

func (d Deps) record(r *http.Request, e audit.Entry) {
	e.OperatorID = sessioncontext.OperatorID(r.Context())
	e.EntityType = audit.EntityProject
	if err := d.Audit.Record(r.Context(), e); err != nil {
		slog.Error("audit project mutation", slog.String("action", e.Action), slog.Int64("project_id", e.EntityID), slog.Any("err", err))
	}
}

// CreateProjectCommandHandler submits the create dialog.
func CreateProjectCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectBack(w, r, listPath, "", "", "Datos de formulario no válidos")
			return
		}
		returnQuery := r.PostFormValue("return")
		f, decodeErrs := decodeProjectForm(r.PostForm)
		m := newModal("create", returnQuery, f, 0)

		var createdID int64
		msg, ok := d.submit(w, r, m, decodeErrs, func(ctx context.Context, in ProjectForm) (string, error) {
			res, err := d.API.Projects.Create(ctx, in.createInput())
			createdID = res.ID
			return res.Message, err
		})
		if !ok {
			return
		}
		d.record(r, audit.Entry{Action: "project.create", EntityID: createdID, After: f.createInput(), Message: msg})
		html.RedirectBack(w, r, listPath, returnQuery, orDefault(msg, "Proyecto creado exitosamente."), "")
	}
}

// UpdateProjectCommandHandler submits the edit dialog.
func UpdateProjectCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			html.RedirectBack(w, r, listPath, "", "", "Id de proyecto no válido")
			return
		}
		if err := r.ParseForm(); err != nil {
			html.RedirectBack(w, r, listPath, "", "", "Datos de formulario no válidos")
			return
		}
		returnQuery := r.PostFormValue("return")
		f, decodeErrs := decodeProjectForm(r.PostForm)
		m := newModal("edit", returnQuery, f, id)

		msg, ok := d.submit(w, r, m, decodeErrs, func(ctx context.Context, in ProjectForm) (string, error) {
			res, err := d.API.Projects.Update(ctx, id, in.updateInput())
			return res.Message, err
		})
		if !ok {
			return
		}
		entry := audit.Entry{Action: "project.update", EntityID: id, After: f.updateInput(), Message: msg}
		if before, found := findProject(d.projectsScreen(r.Context()).Snapshot().Data, id); found {
			entry.Before = before
		}
		d.record(r, entry)
		html.RedirectBack(w, r, listPath, returnQuery, orDefault(msg, "Proyecto actualizado exitosamente."), "")
	}
}

// DeleteProjectCommandHandler deletes a project and returns to the list.
func DeleteProjectCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		returnQuery := r.PostFormValue("return")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			html.RedirectBack(w, r, listPath, returnQuery, "", "Id de proyecto no válido")
			return
		}

		res, err := d.API.Projects.Delete(r.Context(), id)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			slog.Error("delete project", slog.Int64("project_id", id), slog.Any("err", err))
			html.RedirectBack(w, r, listPath, returnQuery, "", api.Message(err, msgDeleteFailed))
			return
		}

		entry := audit.Entry{Action: "project.delete", EntityID: id, Message: res.Message}
		if before, found := findProject(d.projectsScreen(r.Context()).Snapshot().Data, id); found {
			entry.Before = before
		}
		d.record(r, entry)
		html.RedirectBack(w, r, listPath, returnQuery, orDefault(res.Message, "Proyecto eliminado."), "")
	}
}

func orDefault(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
