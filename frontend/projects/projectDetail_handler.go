package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	sessioncontext "adminconsole/frontend/shared/context"
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/lookup"
	"adminconsole/frontend/shared/modal"
	"adminconsole/frontend/shared/viewstate"
	"adminconsole/infrastructure/api"
	"adminconsole/infrastructure/audit"
	"adminconsole/infrastructure/rbac"
)

const (
	msgDetailFailed    = "Error al cargar los detalles del proyecto."
	msgAvailableFailed = "Error al cargar usuarios disponibles."
	msgSelectOne       = "Por favor, selecciona al menos un usuario para asignar."
	msgAssigned        = "Usuarios asignados exitosamente."
	msgAssignFailed    = "Error al asignar usuarios. Por favor, intenta nuevamente."
	msgUnassigned      = "Usuario desasignado exitosamente."
	msgUnassignFailed  = "Error al desasignar el usuario."
)

func detailPath(id int64) string {
	return listPath + "/" + strconv.FormatInt(id, 10)
}

func (d Deps) detailScreen(ctx context.Context, id int64) *viewstate.Screen[api.Project] {
	return viewstate.Get[api.Project](d.Screens, sessioncontext.SessionID(ctx), "project."+strconv.FormatInt(id, 10))
}

type detailState struct {
	project    viewstate.Snapshot[api.Project]
	err        error
	admins     lookup.AdminNames
	candidates    []api.User
	candidatesErr error
}

// loadDetail fetches the project and the administrator names. With
// withCandidates it also fetches the users visible to the operator's
// administrator for the assign dialog; all loads run concurrently.
func (d Deps) loadDetail(ctx context.Context, id int64, withCandidates bool) detailState {
	var state detailState
	var g errgroup.Group
	g.Go(func() error {
		state.project, state.err = d.detailScreen(ctx, id).Load(ctx, func(ctx context.Context) (api.Project, error) {
			return d.API.Projects.Get(ctx, id)
		})
		return nil
	})
	g.Go(func() error {
		state.admins = d.loadAdmins(ctx)
		return nil
	})
	if withCandidates {
		g.Go(func() error {
			state.candidates, state.candidatesErr = d.API.Users.List(ctx, api.UserFilter{})
			return nil
		})
	}
	_ = g.Wait()
	return state
}

// assignOutcome is carried into a re-render of the assign dialog.
type assignOutcome struct {
	selected []int64
	err      string
}

func (d Deps) renderDetail(w http.ResponseWriter, r *http.Request, id int64, status int, openAssign bool, outcome *assignOutcome) {
	ctx := r.Context()
	canAssign := sessioncontext.Can(ctx, rbac.ProjectAssign)
	openAssign = openAssign && canAssign

	state := d.loadDetail(ctx, id, openAssign)
	if errors.Is(state.err, context.Canceled) || errors.Is(state.candidatesErr, context.Canceled) {
		return
	}

	data := DetailPageData{
		Page:        html.NewPage(r, "Detalle del proyecto", listPath, d.Settings),
		ProjectID:   id,
		CanAssign:   canAssign,
		CanUnassign: sessioncontext.Can(ctx, rbac.ProjectUnassign),
		CanRoster:   sessioncontext.Can(ctx, rbac.ProjectRosterView),
	}
	if state.project.HasData && state.project.Data.ID == id {
		p := state.project.Data
		data.Loaded = true
		data.Name = p.Name
		data.Description = p.Description
		data.OwnerName = state.admins.Name(p.AdministratorID)
		data.Members = memberRows(p.Users)
	}

	switch {
	case state.err != nil:
		slog.Error("load project detail", slog.Int64("project_id", id), slog.Any("err", state.err))
		if api.IsNotFound(state.err) {
			html.RedirectBack(w, r, listPath, "", "", "Proyecto no encontrado")
			return
		}
		data.Error = msgDetailFailed
		if openAssign {
			data.Error = msgAvailableFailed
		}
	case openAssign && state.candidatesErr != nil:
		slog.Error("load available users", slog.Int64("project_id", id), slog.Any("err", state.candidatesErr))
		data.Error = msgAvailableFailed
	case openAssign:
		data.Assign = &AssignModalData{
			ProjectID: id,
			Available: memberRows(AvailableUsers(state.candidates, state.project.Data.Users)),
		}
		if outcome != nil {
			data.Assign.Selected = outcome.selected
			data.Assign.Error = outcome.err
		}
	}
	if outcome != nil && data.Assign == nil && outcome.err != "" && data.Error == "" {
		data.Error = outcome.err
	}

	html.Write(w, r, status, ProjectDetailPage(data))
}

func memberRows(users []api.User) []MemberRow {
	rows := make([]MemberRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, MemberRow{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return rows
}

func projectID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ProjectDetailPageQueryHandler shows a project with its assigned users,
// and the assign dialog for ?modal=assign.
func ProjectDetailPageQueryHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := projectID(r)
		if !ok {
			html.RedirectBack(w, r, listPath, "", "", "Id de proyecto no válido")
			return
		}
		d.renderDetail(w, r, id, http.StatusOK, r.URL.Query().Get("modal") == "assign", nil)
	}
}

// AssignUsersCommandHandler submits the assign dialog.
func AssignUsersCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := projectID(r)
		if !ok {
			html.RedirectBack(w, r, listPath, "", "", "Id de proyecto no válido")
			return
		}
		if err := r.ParseForm(); err != nil {
			html.RedirectBack(w, r, detailPath(id), "", "", "Datos de formulario no válidos")
			return
		}
		f, decodeErrs := decodeAssignForm(r.PostForm)
		if len(decodeErrs) > 0 || len(f.UserIDs) == 0 {
			d.renderDetail(w, r, id, http.StatusUnprocessableEntity, true, &assignOutcome{selected: f.UserIDs, err: msgSelectOne})
			return
		}

		flow := modal.New(f)
		state := flow.Run(r.Context(), func(ctx context.Context, in AssignForm) (string, error) {
			res, err := d.API.Projects.Assign(ctx, id, in.UserIDs)
			return res.Message, err
		})
		if state != modal.ClosedSuccess {
			if r.Context().Err() != nil {
				return
			}
			slog.Error("assign users", slog.Int64("project_id", id), slog.Any("err", flow.Err))
			d.renderDetail(w, r, id, http.StatusBadGateway, true, &assignOutcome{selected: f.UserIDs, err: api.Message(flow.Err, msgAssignFailed)})
			return
		}

		d.record(r, audit.Entry{
			Action:   "project.assign",
			EntityID: id,
			After:    map[string]any{"userIds": f.UserIDs},
			Message:  flow.Result,
		})
		html.RedirectBack(w, r, detailPath(id), "", orDefault(flow.Result, msgAssigned), "")
	}
}

// UnassignUserCommandHandler removes one user from the project.
func UnassignUserCommandHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := projectID(r)
		if !ok {
			html.RedirectBack(w, r, listPath, "", "", "Id de proyecto no válido")
			return
		}
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil || userID <= 0 {
			html.RedirectBack(w, r, detailPath(id), "", "", "Id de usuario no válido")
			return
		}

		res, err := d.API.Projects.Unassign(r.Context(), id, userID)
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			slog.Error("unassign user", slog.Int64("project_id", id), slog.Int64("user_id", userID), slog.Any("err", err))
			html.RedirectBack(w, r, detailPath(id), "", "", api.Message(err, msgUnassignFailed))
			return
		}

		d.record(r, audit.Entry{
			Action:   "project.unassign",
			EntityID: id,
			Before:   map[string]any{"userId": userID},
			Message:  res.Message,
		})
		html.RedirectBack(w, r, detailPath(id), "", msgUnassigned, "")
	}
}

// ProjectRosterPDFQueryHandler streams the printable roster of a project.
func ProjectRosterPDFQueryHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := projectID(r)
		if !ok {
			html.RedirectBack(w, r, listPath, "", "", "Id de proyecto no válido")
			return
		}
		state := d.loadDetail(r.Context(), id, false)
		if state.err != nil {
			if r.Context().Err() != nil {
				return
			}
			slog.Error("load project for roster", slog.Int64("project_id", id), slog.Any("err", state.err))
			html.RedirectBack(w, r, detailPath(id), "", "", msgDetailFailed)
			return
		}

		p := state.project.Data
		pdfBytes, err := renderRosterPDF(RosterData{
			ProjectID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			OwnerName:   state.admins.Name(p.AdministratorID),
			Members:     memberRows(p.Users),
			DetailURL:   absoluteURL(r, detailPath(p.ID)),
		}, d.now())
		if err != nil {
			slog.Error("render roster pdf", slog.Int64("project_id", id), slog.Any("err", err))
			http.Error(w, "failed to build roster pdf", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=proyecto-%d.pdf", p.ID))
		_, _ = w.Write(pdfBytes)
	}
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
