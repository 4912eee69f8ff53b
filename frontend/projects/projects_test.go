package projects

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	sessioncontext "adminconsole/frontend/shared/context"
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/lookup"
	"adminconsole/frontend/shared/viewstate"
	"adminconsole/infrastructure/api"
	"adminconsole/infrastructure/rbac"
	"adminconsole/models"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   map[string]int
	routes  map[string]func(w http.ResponseWriter, r *http.Request)
	payload map[string][]byte
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	fb := &fakeBackend{
		calls:   map[string]int{},
		routes:  map[string]func(http.ResponseWriter, *http.Request){},
		payload: map[string][]byte{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		var raw json.RawMessage
		decoded := json.NewDecoder(r.Body).Decode(&raw) == nil
		fb.mu.Lock()
		fb.calls[key]++
		if decoded {
			fb.payload[key] = raw
		}
		h, ok := fb.routes[key]
		fb.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return fb, client
}

func (fb *fakeBackend) on(key string, status int, body any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[key] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (fb *fakeBackend) count(key string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[key]
}

func session(codes ...string) models.Session {
	perms := map[string]int{}
	for _, code := range codes {
		perms[code] = 1
	}
	return models.Session{
		ID:                "tok",
		OperatorID:        1,
		Operator:          models.Operator{ID: 1, Username: "root", Role: rbac.RoleAdmin},
		OperatorRoles:     []string{rbac.RoleAdmin},
		ScreenPermissions: perms,
		ExpiresAt:         time.Now().Add(time.Hour),
	}
}

var allCodes = []string{
	rbac.ProjectsListView, rbac.ProjectsCreate, rbac.ProjectsEdit, rbac.ProjectsDelete,
	rbac.ProjectDetailView, rbac.ProjectAssign, rbac.ProjectUnassign, rbac.ProjectRosterView,
}

func newDeps(client *api.Client) Deps {
	return Deps{
		API:      client,
		Screens:  viewstate.NewRegistry(),
		Settings: html.Settings{PageSize: 10, FilterDebounce: 500 * time.Millisecond, ConfirmDebounce: time.Second, ToastDuration: 5 * time.Second},
		Now:      func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func router(d Deps, s models.Session) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(sessioncontext.NewContextWithSession(r.Context(), s)))
		})
	})
	r.Get("/console/projects", ProjectsPageQueryHandler(d))
	r.Post("/console/projects", CreateProjectCommandHandler(d))
	r.Post("/console/projects/{id}", UpdateProjectCommandHandler(d))
	r.Post("/console/projects/{id}/delete", DeleteProjectCommandHandler(d))
	r.Get("/console/projects/{id}", ProjectDetailPageQueryHandler(d))
	r.Post("/console/projects/{id}/users", AssignUsersCommandHandler(d))
	r.Post("/console/projects/{id}/users/{userID}/delete", UnassignUserCommandHandler(d))
	r.Get("/console/projects/{id}/roster.pdf", ProjectRosterPDFQueryHandler(d))
	return r
}

func post(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

var (
	sampleAdmins = map[string]any{"users": []map[string]any{
		{"id": 1, "nombre": "Ana Admin", "email": "ana@example.com", "rol_id": 1},
		{"id": 2, "nombre": "Luis Ortega", "email": "luis@example.com", "rol_id": 1},
	}}
	sampleProjects = map[string]any{"projects": []map[string]any{
		{"id": 10, "nombre": "Portal Clientes", "descripcion": "Web", "administrador_id": 1},
		{"id": 11, "nombre": "Inventario", "descripcion": "ERP", "administrador_id": 2},
		{"id": 12, "nombre": "Huérfano", "descripcion": "Sin dueño", "administrador_id": 77},
	}}
	sampleDetail = map[string]any{"project": map[string]any{
		"id": 10, "nombre": "Portal Clientes", "descripcion": "Web", "administrador_id": 1,
		"usuarios": []map[string]any{{"id": 5, "nombre": "Eva", "email": "eva@example.com", "rol_id": 2, "administrador_id": 1}},
	}}
	sampleVisible = map[string]any{"users": []map[string]any{
		{"id": 4, "nombre": "Dani", "email": "dani@example.com", "rol_id": 2, "administrador_id": 1},
		{"id": 5, "nombre": "Eva", "email": "eva@example.com", "rol_id": 2, "administrador_id": 1},
		{"id": 6, "nombre": "Fede", "email": "fede@example.com", "rol_id": 2, "administrador_id": 1},
	}}
)

func users(ids ...int64) []api.User {
	out := make([]api.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, api.User{ID: id})
	}
	return out
}

func ids(us []api.User) []int64 {
	out := make([]int64, 0, len(us))
	for _, u := range us {
		out = append(out, u.ID)
	}
	return out
}

func TestAvailableUsers_RemovesAssignedKeepingOrder(t *testing.T) {
	got := AvailableUsers(users(9, 3, 7, 1, 4), users(7, 9, 42))
	require.Equal(t, []int64{3, 1, 4}, ids(got))
}

func TestAvailableUsers_EdgeCases(t *testing.T) {
	require.Empty(t, AvailableUsers(nil, users(1)))
	require.Equal(t, []int64{1, 2}, ids(AvailableUsers(users(1, 2), nil)))
	require.Empty(t, AvailableUsers(users(1, 2), users(2, 1)))
}

func TestFilterProjects_MatchesNameAndOwner(t *testing.T) {
	admins := lookup.BuildAdminNames([]api.User{{ID: 1, Name: "Ana Admin"}, {ID: 2, Name: "Luis Ortega"}})
	projects := []api.Project{
		{ID: 10, Name: "Portal Clientes", AdministratorID: 1},
		{ID: 11, Name: "Inventario", AdministratorID: 2},
		{ID: 12, Name: "Huérfano", AdministratorID: 77},
	}

	require.Len(t, FilterProjects(projects, admins, Filters{}), 3)
	require.Equal(t, int64(10), FilterProjects(projects, admins, Filters{Name: "portal"})[0].ID)
	require.Equal(t, int64(11), FilterProjects(projects, admins, Filters{Owner: "ortega"})[0].ID)
	require.Equal(t, int64(12), FilterProjects(projects, admins, Filters{Name: "huerfano"})[0].ID)
	require.Equal(t, int64(12), FilterProjects(projects, admins, Filters{Owner: "desconocido"})[0].ID)
	require.Empty(t, FilterProjects(projects, admins, Filters{Name: "portal", Owner: "luis"}))
}

func TestDecodeAssignForm_DropsDuplicatesAndInvalidIDs(t *testing.T) {
	f, errs := decodeAssignForm(url.Values{"userIds": {"4", "6", "4", "0"}})
	require.Empty(t, errs)
	require.Equal(t, []int64{4, 6}, f.UserIDs)
}

func TestCheck_ProjectFormRequiresAllFields(t *testing.T) {
	f, errs := decodeProjectForm(url.Values{"nombre": {"  "}, "descripcion": {"d"}})
	got := check(f, errs)
	require.Equal(t, "Este campo es obligatorio", got["nombre"])
	require.Contains(t, got, "administrador_id")
	require.NotContains(t, got, "descripcion")
}

func TestRenderRosterPDF(t *testing.T) {
	out, err := renderRosterPDF(RosterData{
		ProjectID: 10,
		Name:      "Gestión de almacén",
		OwnerName: "Ana Admin",
		Members:   []MemberRow{{ID: 5, Name: "Eva Núñez", Email: "eva@example.com"}},
		DetailURL: "http://localhost/console/projects/10",
	}, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = renderRosterPDF(RosterData{}, time.Now())
	require.Error(t, err)
}

func TestProjectsPage_FiltersByOwnerAndShowsUnknownAdministrator(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects", http.StatusOK, sampleProjects)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	h := router(newDeps(client), session(allCodes...))

	rec := get(h, "/console/projects")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Administrador desconocido")

	rec = get(h, "/console/projects?owner=luis")
	body := rec.Body.String()
	require.Contains(t, body, "Inventario")
	require.NotContains(t, body, "Portal Clientes")
}

func TestProjectsPage_AdministratorFailureKeepsPreviousNames(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects", http.StatusOK, sampleProjects)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	h := router(newDeps(client), session(allCodes...))

	require.Contains(t, get(h, "/console/projects").Body.String(), "Luis Ortega")

	fb.on("GET /api/v1/users/rol/1", http.StatusInternalServerError, nil)
	rec := get(h, "/console/projects")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Luis Ortega")
	require.Equal(t, 2, fb.count("GET /api/v1/users/rol/1"))
}

func TestProjectsPage_ViewerSeesNoMutations(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects", http.StatusOK, sampleProjects)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)

	rec := get(router(newDeps(client), session(rbac.ProjectsListView)), "/console/projects?modal=create")
	body := rec.Body.String()
	require.NotContains(t, body, "Crear proyecto")
	require.NotContains(t, body, `id="project-form"`)
	require.NotContains(t, body, "Eliminar")
}

func TestCreateProject_SuccessRedirectsWithServerMessage(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("POST /api/v1/projects/create", http.StatusCreated, map[string]any{"message": "Proyecto creado"})

	rec := post(router(newDeps(client), session(allCodes...)), "/console/projects", url.Values{
		"return": {"owner=ana"}, "nombre": {"Nuevo"}, "descripcion": {"Desc"}, "administrador_id": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "Proyecto creado", loc.Query().Get("status"))
	require.Equal(t, "ana", loc.Query().Get("owner"))
	require.JSONEq(t, `{"nombre":"Nuevo","descripcion":"Desc","administrador_id":1}`, string(fb.payload["POST /api/v1/projects/create"]))
}

func TestUpdateProject_BackendResultShownInDialog(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects", http.StatusOK, sampleProjects)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("PUT /api/v1/projects/10", http.StatusBadRequest, map[string]any{"result": "Nombre duplicado"})

	rec := post(router(newDeps(client), session(allCodes...)), "/console/projects/10", url.Values{
		"nombre": {"Inventario"}, "descripcion": {"Web"}, "administrador_id": {"1"},
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Nombre duplicado")
	require.Contains(t, rec.Body.String(), `id="project-form"`)
}

func TestDeleteProject_FailureUsesFallback(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("DELETE /api/v1/projects/10", http.StatusInternalServerError, nil)

	rec := post(router(newDeps(client), session(allCodes...)), "/console/projects/10/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, msgDeleteFailed, loc.Query().Get("error"))
}

func TestDetail_AssignDialogListsAvailableUsers(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("GET /api/v1/users", http.StatusOK, sampleVisible)

	rec := get(router(newDeps(client), session(allCodes...)), "/console/projects/10?modal=assign")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `id="assign-form"`)
	require.Contains(t, body, `value="4"`)
	require.Contains(t, body, `value="6"`)
	require.NotContains(t, body, `name="userIds" value="5"`)
}

func TestDetail_AssignDialogOffersOnlyVisibleUsers(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("GET /api/v1/users", http.StatusOK, map[string]any{"users": []map[string]any{
		{"id": 4, "nombre": "Dani", "email": "dani@example.com", "rol_id": 2, "administrador_id": 1},
	}})
	fb.on("GET /api/v1/users/rol/2", http.StatusOK, map[string]any{"users": []map[string]any{
		{"id": 4, "nombre": "Dani", "email": "dani@example.com", "rol_id": 2, "administrador_id": 1},
		{"id": 99, "nombre": "OtroInquilino", "email": "otro@example.com", "rol_id": 2, "administrador_id": 7},
	}})

	rec := get(router(newDeps(client), session(allCodes...)), "/console/projects/10?modal=assign")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `value="4"`)
	require.NotContains(t, body, "OtroInquilino")
	require.Equal(t, 1, fb.count("GET /api/v1/users"))
	require.Zero(t, fb.count("GET /api/v1/users/rol/2"))
}

func TestDetail_AssignDialogFailsClosedWhenDetailFails(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusInternalServerError, nil)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("GET /api/v1/users", http.StatusOK, sampleVisible)

	rec := get(router(newDeps(client), session(allCodes...)), "/console/projects/10?modal=assign")
	body := rec.Body.String()
	require.NotContains(t, body, `id="assign-form"`)
	require.NotContains(t, body, "Dani")
	require.Contains(t, body, msgAvailableFailed)
}

func TestDetail_AssignDialogFailsClosedWhenUsersFail(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("GET /api/v1/users", http.StatusBadGateway, nil)

	rec := get(router(newDeps(client), session(allCodes...)), "/console/projects/10?modal=assign")
	body := rec.Body.String()
	require.NotContains(t, body, `id="assign-form"`)
	require.Contains(t, body, msgAvailableFailed)
	require.Contains(t, body, "Eva")
}

func TestDetail_MissingUsuariosIsAFailure(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, map[string]any{"project": map[string]any{"id": 10, "nombre": "P"}})
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)

	rec := get(router(newDeps(client), session(allCodes...)), "/console/projects/10")
	require.Contains(t, rec.Body.String(), msgDetailFailed)
}

func TestAssign_EmptySelectionKeepsDialogOpen(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("GET /api/v1/users", http.StatusOK, sampleVisible)

	rec := post(router(newDeps(client), session(allCodes...)), "/console/projects/10/users", url.Values{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), msgSelectOne)
	require.Contains(t, rec.Body.String(), `id="assign-form"`)
	require.Zero(t, fb.count("POST /api/v1/projects/10/users"))
}

func TestAssign_SuccessRedirectsToRefetchedDetail(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("POST /api/v1/projects/10/users", http.StatusOK, map[string]any{})
	h := router(newDeps(client), session(allCodes...))

	rec := post(h, "/console/projects/10/users", url.Values{"userIds": {"4", "6"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/console/projects/10", loc.Path)
	require.Equal(t, msgAssigned, loc.Query().Get("status"))
	require.JSONEq(t, `{"userIds":[4,6]}`, string(fb.payload["POST /api/v1/projects/10/users"]))

	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	get(h, loc.String())
	require.Equal(t, 1, fb.count("GET /api/v1/projects/10"))
}

func TestAssign_BackendFailureKeepsSelection(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)
	fb.on("GET /api/v1/users", http.StatusOK, sampleVisible)
	fb.on("POST /api/v1/projects/10/users", http.StatusInternalServerError, nil)

	rec := post(router(newDeps(client), session(allCodes...)), "/console/projects/10/users", url.Values{"userIds": {"6"}})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, msgAssignFailed)
	require.Contains(t, body, `value="6" checked`)
}

func TestUnassign_Outcomes(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("DELETE /api/v1/projects/10/users/5", http.StatusOK, map[string]any{"message": "ok"})
	fb.on("DELETE /api/v1/projects/10/users/6", http.StatusNotFound, map[string]any{"message": "No asignado"})
	h := router(newDeps(client), session(allCodes...))

	rec := post(h, "/console/projects/10/users/5/delete", url.Values{})
	loc, _ := url.Parse(rec.Header().Get("Location"))
	require.Equal(t, msgUnassigned, loc.Query().Get("status"))

	rec = post(h, "/console/projects/10/users/6/delete", url.Values{})
	loc, _ = url.Parse(rec.Header().Get("Location"))
	require.Equal(t, "No asignado", loc.Query().Get("error"))
}

func TestRoster_ServesPDF(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on("GET /api/v1/projects/10", http.StatusOK, sampleDetail)
	fb.on("GET /api/v1/users/rol/1", http.StatusOK, sampleAdmins)

	rec := get(router(newDeps(client), session(allCodes...)), "/console/projects/10/roster.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}
