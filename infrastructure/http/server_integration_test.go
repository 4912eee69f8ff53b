package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"adminconsole/frontend/login"
	"adminconsole/frontend/shared/html"
	"adminconsole/infrastructure/api"
	"adminconsole/infrastructure/metrics"
	"adminconsole/infrastructure/rbac"
	sessioncookie "adminconsole/infrastructure/session"
	"adminconsole/infrastructure/sqlite"
)

const (
	adminPassword  = "Admin123!Console"
	viewerPassword = "Viewer123!Console"
)

type backendCall struct {
	Method string
	Path   string
	Body   string
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []backendCall
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, backendCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	var out any
	switch r.Method + " " + r.URL.Path {
	case "GET /api/v1/users":
		out = map[string]any{"users": []map[string]any{
			{"id": 1, "nombre": "Ana Admin", "email": "ana@example.com", "rol_id": 1},
			{"id": 2, "nombre": "Bruno", "email": "bruno@example.com", "rol_id": 2, "administrador_id": 1},
		}}
	case "GET /api/v1/users/rol/1":
		out = map[string]any{"users": []map[string]any{{"id": 1, "nombre": "Ana Admin", "email": "ana@example.com", "rol_id": 1}}}
	case "GET /api/v1/projects":
		out = map[string]any{"projects": []map[string]any{{"id": 10, "nombre": "Faro", "descripcion": "d", "administrador_id": 1}}}
	case "POST /api/v1/projects/create":
		out = map[string]any{"message": "Proyecto creado", "project": map[string]any{"id": 42}}
	default:
		w.WriteHeader(http.StatusNotFound)
		out = map[string]any{"message": "no encontrado"}
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (b *fakeBackend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

type integrationEnv struct {
	server  *httptest.Server
	app     *Server
	db      *sqlite.DB
	backend *fakeBackend
}

func setupIntegrationServer(t *testing.T) (*integrationEnv, *http.Client) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server-integration.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if err := login.UpsertOperator(context.Background(), db, "admin", rbac.RoleAdmin, adminPassword); err != nil {
		t.Fatalf("seed admin operator: %v", err)
	}
	if err := login.UpsertOperator(context.Background(), db, "viewer", rbac.RoleViewer, viewerPassword); err != nil {
		t.Fatalf("seed viewer operator: %v", err)
	}

	backend := &fakeBackend{}
	backendSrv := httptest.NewServer(backend)
	rec := metrics.New()
	client, err := api.New(api.Options{BaseURL: backendSrv.URL, Timeout: 5 * time.Second, Metrics: rec})
	if err != nil {
		t.Fatalf("api client: %v", err)
	}

	s := NewServer(Options{
		Addr:            "127.0.0.1:0",
		DB:              db,
		API:             client,
		Metrics:         rec,
		MetricsPath:     "/metrics",
		Settings:        html.Settings{PageSize: 10, FilterDebounce: 500 * time.Millisecond, ConfirmDebounce: time.Second, ToastDuration: 5 * time.Second},
		SessionDuration: time.Hour,
	})
	ts := httptest.NewServer(s.Handler())
	env := &integrationEnv{server: ts, app: s, db: db, backend: backend}
	t.Cleanup(func() {
		env.server.Close()
		backendSrv.Close()
		_ = env.db.Close()
	})

	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, baseURL, path string, data url.Values) *http.Response {
	t.Helper()
	if data == nil {
		data = url.Values{}
	}
	if token := cookieValue(t, client, baseURL, csrfCookieName); token != "" {
		data.Set("_csrf", token)
	}
	resp, err := client.PostForm(baseURL+path, data)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func cookieValue(t *testing.T, client *http.Client, baseURL, name string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func loginAs(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()

	resp := get(t, client, baseURL, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postForm(t, client, baseURL, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != login.Landing {
		t.Fatalf("unexpected login redirect: %s", loc)
	}
	_ = resp.Body.Close()
}

func countRows(t *testing.T, db *sqlite.DB, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.R.QueryRowContext(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestCSRFPostWithoutTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	// No GET first: no CSRF token available in cookie or form.
	resp, err := client.PostForm(env.server.URL+"/login", url.Values{
		"username": {"admin"},
		"password": {adminPassword},
	})
	if err != nil {
		t.Fatalf("post login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for missing csrf, got %d", resp.StatusCode)
	}
}

func TestConsoleRequiresSession(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/console/users")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = get(t, client, env.server.URL, "/")
	_ = resp.Body.Close()
	if resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected root to send anonymous visitors to /login, got %s", resp.Header.Get("Location"))
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env, client := setupIntegrationServer(t)
	_ = get(t, client, env.server.URL, "/login").Body.Close()

	resp := postForm(t, client, env.server.URL, "/login", url.Values{
		"username": {"admin"},
		"password": {"nope"},
	})
	_ = resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Location"), "/login?error=") {
		t.Fatalf("expected login error redirect, got %s", resp.Header.Get("Location"))
	}
	if cookieValue(t, client, env.server.URL, sessioncookie.CookieName) != "" {
		t.Fatalf("no session cookie expected after a failed login")
	}
}

func TestAdminSeesUsersFromBackend(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)

	resp := get(t, client, env.server.URL, "/console/users")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected users page 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	for _, want := range []string{"Bruno", "bruno@example.com", "Crear usuario"} {
		if !strings.Contains(body, want) {
			t.Fatalf("users page missing %q", want)
		}
	}
	if env.backend.count(http.MethodGet, "/api/v1/users") != 1 {
		t.Fatalf("expected one users list call")
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("secure headers missing")
	}
}

func TestViewerCanReadButNotMutate(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "viewer", viewerPassword)

	for _, path := range []string{"/console/users", "/console/projects", "/console/audit"} {
		resp := get(t, client, env.server.URL, path)
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("viewer GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		if strings.Contains(body, "Crear usuario") {
			t.Fatalf("viewer should not see create actions on %s", path)
		}
	}

	resp := postForm(t, client, env.server.URL, "/console/projects", url.Values{
		"nombre":           {"Faro"},
		"descripcion":      {"d"},
		"administrador_id": {"1"},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer create, got %d", resp.StatusCode)
	}
	if env.backend.count(http.MethodPost, "/api/v1/projects/create") != 0 {
		t.Fatalf("backend must not be called for a denied mutation")
	}
}

func TestAdminCreateProjectIsAudited(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)

	resp := postForm(t, client, env.server.URL, "/console/projects", url.Values{
		"nombre":           {"Faro"},
		"descripcion":      {"Proyecto costero"},
		"administrador_id": {"1"},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected create 303, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Location"), "/console/projects?") {
		t.Fatalf("unexpected create redirect: %s", resp.Header.Get("Location"))
	}
	if env.backend.count(http.MethodPost, "/api/v1/projects/create") != 1 {
		t.Fatalf("expected one create call")
	}
	if n := countRows(t, env.db, `SELECT COUNT(*) FROM audit_logs WHERE action = ? AND entity_id = ?`, "project.create", "42"); n != 1 {
		t.Fatalf("expected one project.create audit row, got %d", n)
	}

	resp = get(t, client, env.server.URL, "/console/audit?entity=projects")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "project.create") {
		t.Fatalf("audit page should list the create, got %d", resp.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)
	token := cookieValue(t, client, env.server.URL, sessioncookie.CookieName)

	_ = get(t, client, env.server.URL, "/console/users").Body.Close()
	if env.app.Screens.Len(token) == 0 {
		t.Fatalf("expected screens for the session after a page load")
	}

	resp := postForm(t, client, env.server.URL, "/logout", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected logout 303, got %d", resp.StatusCode)
	}
	if env.app.Screens.Len(token) != 0 {
		t.Fatalf("logout should drop the session screens")
	}

	resp = get(t, client, env.server.URL, "/console/users")
	_ = resp.Body.Close()
	if resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login after logout, got %s", resp.Header.Get("Location"))
	}
}

func TestSweepDropsExpiredSessions(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)
	token := cookieValue(t, client, env.server.URL, sessioncookie.CookieName)
	_ = get(t, client, env.server.URL, "/console/users").Body.Close()

	env.app.sweep(context.Background(), time.Now().Add(2*time.Hour))

	if env.app.Screens.Len(token) != 0 {
		t.Fatalf("sweep should drop screens of expired sessions")
	}
	if _, ok := env.app.SessionCache.Get(token); ok {
		t.Fatalf("sweep should evict the cached session")
	}
	if n := countRows(t, env.db, `SELECT COUNT(*) FROM sessions`); n != 0 {
		t.Fatalf("expected expired session rows removed, got %d", n)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/health")
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}

	loginAs(t, client, env.server.URL, "admin", adminPassword)
	_ = get(t, client, env.server.URL, "/console/projects").Body.Close()

	resp = get(t, client, env.server.URL, "/metrics")
	body := readBody(t, resp)
	if !strings.Contains(body, "adminconsole_api_requests_total") {
		t.Fatalf("metrics should expose backend call counters")
	}
}

func TestAssetsServed(t *testing.T) {
	env, client := setupIntegrationServer(t)
	resp := get(t, client, env.server.URL, "/assets/app.css")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected app.css 200, got %d", resp.StatusCode)
	}
}

func TestCSRFValidateEndpointAnswersJSON(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/console/users/validate", strings.NewReader("password=a&confirmPassword=b"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(csrfHeaderName, "forged")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post validate: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden || !strings.Contains(body, `"error"`) {
		t.Fatalf("expected JSON 403, got %d %q", resp.StatusCode, body)
	}

	req, _ = http.NewRequest(http.MethodPost, env.server.URL+"/console/users/validate", strings.NewReader("password=a&confirmPassword=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(csrfHeaderName, cookieValue(t, client, env.server.URL, csrfCookieName))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("post validate: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "confirmPassword") {
		t.Fatalf("expected field errors for mismatch, got %d %q", resp.StatusCode, body)
	}
}
