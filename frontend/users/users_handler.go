package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

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
	screenUsers  = "users"
	screenAdmins = "users.admins"

	listPath = "/console/users"

	msgLoadFailed   = "Error al cargar usuarios"
	msgUnexpected   = "Ocurrió un error inesperado. Por favor, intenta nuevamente."
	msgDeleteFailed = "Error al eliminar el usuario"
	msgInvalidForm  = "Por favor completa todos los campos"
)

// Deps are the collaborators of the users screens.
type Deps struct {
	API      *api.Client
	Screens  *viewstate.Registry
	Audit    *audit.Service
	Settings html.Settings
}

type listState struct {
	filters Filters
	users   viewstate.Snapshot[[]api.User]
	admins  lookup.AdminNames
	err     error
}

func (d Deps) usersScreen(ctx context.Context) *viewstate.Screen[[]api.User] {
	return viewstate.Get[[]api.User](d.Screens, sessioncontext.SessionID(ctx), screenUsers)
}

func (d Deps) adminsScreen(ctx context.Context) *viewstate.Screen[[]api.User] {
	return viewstate.Get[[]api.User](d.Screens, sessioncontext.SessionID(ctx), screenAdmins)
}

// settleFilters merges the filter fields present in the query into the
// screen and returns the resulting filter record.
func (d Deps) settleFilters(r *http.Request) Filters {
	screen := d.usersScreen(r.Context())
	q := r.URL.Query()
	settled := map[string]string{}
	for _, key := range []string{"nombre", "email"} {
		if q.Has(key) {
			settled[key] = strings.TrimSpace(q.Get(key))
		}
	}
	screen.MergeFilters(settled)
	f := screen.Snapshot().Filters
	return Filters{Name: f["nombre"], Email: f["email"]}
}

// loadList fetches users and administrators concurrently. The two loads are
// independent: a failed administrator fetch keeps the previous names.
func (d Deps) loadList(r *http.Request) listState {
	ctx := r.Context()
	state := listState{filters: d.settleFilters(r)}
	var admins viewstate.Snapshot[[]api.User]

	var g errgroup.Group
	g.Go(func() error {
		state.users, state.err = d.usersScreen(ctx).Load(ctx, func(ctx context.Context) ([]api.User, error) {
			return d.API.Users.List(ctx, api.UserFilter{Name: state.filters.Name, Email: state.filters.Email})
		})
		return nil
	})
	g.Go(func() error {
		var err error
		admins, err = d.adminsScreen(ctx).Load(ctx, d.API.Users.ListAdministrators)
		if err != nil && ctx.Err() == nil {
			slog.Warn("load administrators", slog.Any("err", err))
		}
		return nil
	})
	_ = g.Wait()

	state.admins = lookup.BuildAdminNames(admins.Data)
	return state
}

// currentList is the screen as last loaded, fetching only when nothing has
// been loaded yet.
func (d Deps) currentList(r *http.Request) listState {
	users := d.usersScreen(r.Context()).Snapshot()
	if !users.HasData {
		return d.loadList(r)
	}
	f := users.Filters
	return listState{
		filters: Filters{Name: f["nombre"], Email: f["email"]},
		users:   users,
		admins:  lookup.BuildAdminNames(d.adminsScreen(r.Context()).Snapshot().Data),
	}
}

func (d Deps) pageData(r *http.Request, state listState) PageData {
	ctx := r.Context()
	page, size := paging.Parse(r.URL.Query(), d.Settings.PageSize)

	rows := make([]UserRow, 0, len(state.users.Data))
	for _, u := range state.users.Data {
		row := UserRow{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			RoleID:    int(u.RoleID),
			RoleLabel: u.RoleID.Label(),
		}
		if u.RoleID == api.RoleUser {
			row.AdministratorName = state.admins.NameOf(u.AdministratorID)
		}
		rows = append(rows, row)
	}

	data := PageData{
		Page:            html.NewPage(r, "Gestión de usuarios", listPath, d.Settings),
		Settings:        d.Settings,
		Filters:         state.filters,
		Rows:            paging.Window(rows, page, size),
		Sizes:           paging.Sizes,
		Phase:           state.users.Phase.String(),
		ReturnQuery:     html.ReturnQuery(r.URL.Query()),
		CanCreate:       sessioncontext.Can(ctx, rbac.UsersCreate),
		CanEdit:         sessioncontext.Can(ctx, rbac.UsersEdit),
		CanDelete:       sessioncontext.Can(ctx, rbac.UsersDelete),
		CanViewProjects: sessioncontext.Can(ctx, rbac.UserProjectsView),
	}
	if state.err != nil && data.Error == "" {
		data.Error = api.Message(state.err, msgLoadFailed)
	}
	return data
}

func (d Deps) newModal(mode string, returnQuery string, f UserForm, admins lookup.AdminNames, id int64) *ModalData {
	m := &ModalData{
		Mode:        mode,
		ReturnQuery: returnQuery,
		Form:        f,
		Admins:      admins.Options(),
		AdminField:  AdministratorField(api.Role(f.RoleID)),
		RoleRules:   roleRules(),
	}
	if mode == "create" {
		m.Title = "Crear usuario"
		m.Action = listPath
	} else {
		m.Title = "Editar usuario"
		m.Action = listPath + "/" + strconv.FormatInt(id, 10)
	}
	return m
}

func findUser(users []api.User, id int64) (api.User, bool) {
	i := slices.IndexFunc(users, func(u api.User) bool { return u.ID == id })
	if i < 0 {
		return api.User{}, false
	}
	return users[i], true
}

// UsersPageQueryHandler renders the users list, with the create or edit
// dialog when ?modal= asks for it.
func UsersPageQueryHandler(d Deps) http.HandlerFunc {
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
				data.Modal = d.newModal("create", data.ReturnQuery, UserForm{}, state.admins, 0)
			}
		case "edit":
			id, _ := strconv.ParseInt(q.Get("id"), 10, 64)
			u, ok := findUser(state.users.Data, id)
			switch {
			case !data.CanEdit:
			case !ok:
				data.Error = "Usuario no encontrado"
			default:
				data.Modal = d.newModal("edit", data.ReturnQuery, formFromUser(u), state.admins, id)
			}
		}

		html.Write(w, r, http.StatusOK, UsersPage(data))
	}
}

// renderModal re-renders the list with the dialog still open.
func (d Deps) renderModal(w http.ResponseWriter, r *http.Request, status int, m *ModalData) {
	state := d.currentList(r)
	if errors.Is(state.err, context.Canceled) {
		return
	}
	m.Admins = state.admins.Options()
	data := d.pageData(r, state)
	data.ReturnQuery = m.ReturnQuery
	data.Modal = m
	html.Write(w, r, status, UsersPage(data))
}

// submit drives one dialog from validation to its outcome. It returns true
// when the handler should redirect.
func (d Deps) submit(w http.ResponseWriter, r *http.Request, m *ModalData, decodeErrs modal.FieldErrors, fn modal.SubmitFunc[UserForm]) (string, bool) {
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
		slog.Error("user mutation failed", slog.String("mode", m.Mode), slog.Any("err", flow.Err))
		m.Error = api.Message(flow.Err, msgUnexpected)
		d.renderModal(w, r, http.StatusBadGateway, m)
	}
	return "", false
}

// CreateUserCommandHandler submits the create dialog.
func CreateUserCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.RedirectBack(w, r, listPath, "", "", "Datos de formulario no válidos")
			return
		}
		returnQuery := r.PostFormValue("return")
		f, decodeErrs := decodeUserForm(r.PostForm, true)
		m := d.newModal("create", returnQuery, f, lookup.AdminNames{}, 0)

		var createdID int64
		msg, ok := d.submit(w, r, m, decodeErrs, func(ctx context.Context, in UserForm) (string, error) {
			res, err := d.API.Users.Create(ctx, in.createInput())
			createdID = res.ID
			return res.Message, err
		})
		if !ok {
			return
		}

		after := f.createInput()
		after.Password = ""
		if err := d.Audit.Record(r.Context(), audit.Entry{
			OperatorID: sessioncontext.OperatorID(r.Context()),
			Action:     "user.create",
			EntityType: audit.EntityUser,
			EntityID:   createdID,
			After:      after,
			Message:    msg,
		}); err != nil {
			slog.Error("audit user create", slog.Any("err", err))
		}
		html.RedirectBack(w, r, listPath, returnQuery, orDefault(msg, "Usuario creado exitosamente."), "")
	}
}

// UpdateUserCommandHandler submits the edit dialog.
func UpdateUserCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			html.RedirectBack(w, r, listPath, "", "", "Id de usuario no válido")
			return
		}
		if err := r.ParseForm(); err != nil {
			html.RedirectBack(w, r, listPath, "", "", "Datos de formulario no válidos")
			return
		}
		returnQuery := r.PostFormValue("return")
		f, decodeErrs := decodeUserForm(r.PostForm, false)
		m := d.newModal("edit", returnQuery, f, lookup.AdminNames{}, id)

		msg, ok := d.submit(w, r, m, decodeErrs, func(ctx context.Context, in UserForm) (string, error) {
			res, err := d.API.Users.Update(ctx, id, in.updateInput())
			return res.Message, err
		})
		if !ok {
			return
		}

		entry := audit.Entry{
			OperatorID: sessioncontext.OperatorID(r.Context()),
			Action:     "user.update",
			EntityType: audit.EntityUser,
			EntityID:   id,
			After:      f.updateInput(),
			Message:    msg,
		}
		if before, found := findUser(d.usersScreen(r.Context()).Snapshot().Data, id); found {
			entry.Before = before
		}
		if err := d.Audit.Record(r.Context(), entry); err != nil {
			slog.Error("audit user update", slog.Int64("user_id", id), slog.Any("err", err))
		}
		html.RedirectBack(w, r, listPath, returnQuery, orDefault(msg, "Usuario actualizado exitosamente."), "")
	}
}

// DeleteUserCommandHandler deletes a user and returns to the list.
func DeleteUserCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		returnQuery := r.PostFormValue("return")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			html.RedirectBack(w, r, listPath, returnQuery, "", "Id de usuario no válido")
			return
		}

		res, err := d.API.Users.Delete(r.Context(), id)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			slog.Error("delete user", slog.Int64("user_id", id), slog.Any("err", err))
			html.RedirectBack(w, r, listPath, returnQuery, "", api.Message(err, msgDeleteFailed))
			return
		}

		entry := audit.Entry{
			OperatorID: sessioncontext.OperatorID(r.Context()),
			Action:     "user.delete",
			EntityType: audit.EntityUser,
			EntityID:   id,
			Message:    res.Message,
		}
		if before, found := findUser(d.usersScreen(r.Context()).Snapshot().Data, id); found {
			entry.Before = before
		}
		if err := d.Audit.Record(r.Context(), entry); err != nil {
			slog.Error("audit user delete", slog.Int64("user_id", id), slog.Any("err", err))
		}
		html.RedirectBack(w, r, listPath, returnQuery, orDefault(res.Message, "Usuario eliminado."), "")
	}
}

// ValidationResult is the reactive validation response.
type ValidationResult struct {
	Valid         bool              `json:"valid"`
	Errors        modal.FieldErrors `json:"errors"`
	Administrator html.FieldRule    `json:"administrator"`
}

// ValidateUserFormHandler runs the dialog's local rules without submitting
// and answers with the field errors as JSON.
func ValidateUserFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			html.WriteJSON(w, http.StatusBadRequest, ValidationResult{Errors: modal.FieldErrors{"_": "Formulario no válido"}})
			return
		}
		f, decodeErrs := decodeUserForm(r.PostForm, r.PostFormValue("mode") != "edit")
		errs := check(f, decodeErrs)
		if errs == nil {
			errs = modal.FieldErrors{}
		}
		html.WriteJSON(w, http.StatusOK, ValidationResult{
			Valid:         len(errs) == 0,
			Errors:        errs,
			Administrator: AdministratorField(api.Role(f.RoleID)),
		})
	}
}

// UserProjectsPageQueryHandler lists the projects a user is assigned to.
func UserProjectsPageQueryHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			html.RedirectBack(w, r, listPath, "", "", "Id de usuario no válido")
			return
		}

		screen := viewstate.Get[[]api.Project](d.Screens, sessioncontext.SessionID(ctx), "user.projects."+strconv.FormatInt(id, 10))
		var (
			projects  viewstate.Snapshot[[]api.Project]
			loadErr   error
			adminsSet viewstate.Snapshot[[]api.User]
		)
		var g errgroup.Group
		g.Go(func() error {
			projects, loadErr = screen.Load(ctx, func(ctx context.Context) ([]api.Project, error) {
				return d.API.Projects.ListByUser(ctx, id)
			})
			return nil
		})
		g.Go(func() error {
			adminsSet, _ = d.adminsScreen(ctx).Load(ctx, d.API.Users.ListAdministrators)
			return nil
		})
		_ = g.Wait()
		if errors.Is(loadErr, context.Canceled) {
			return
		}

		admins := lookup.BuildAdminNames(adminsSet.Data)
		data := ProjectsPageData{
			Page:          html.NewPage(r, "Proyectos del usuario", listPath, d.Settings),
			UserID:        id,
			UserName:      "Usuario #" + strconv.FormatInt(id, 10),
			CanOpenDetail: sessioncontext.Can(ctx, rbac.ProjectDetailView),
		}
		if u, ok := findUser(d.usersScreen(ctx).Snapshot().Data, id); ok {
			data.UserName = u.Name
		}
		for _, p := range projects.Data {
			data.Rows = append(data.Rows, ProjectRow{ID: p.ID, Name: p.Name, Desc: p.Description, OwnerName: admins.Name(p.AdministratorID)})
		}
		if loadErr != nil {
			slog.Error("load user projects", slog.Int64("user_id", id), slog.Any("err", loadErr))
			data.Error = api.Message(loadErr, "Error al cargar los proyectos del usuario")
		}
		html.Write(w, r, http.StatusOK, UserProjectsPage(data))
	}
}

func orDefault(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
