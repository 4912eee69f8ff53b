package html

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"

	sessioncontext "adminconsole/frontend/shared/context"
	"adminconsole/frontend/shared/nav"
)

// Settings are the UI timings and sizes configured for the console.
type Settings struct {
	PageSize        int
	FilterDebounce  time.Duration
	ConfirmDebounce time.Duration
	ToastDuration   time.Duration
}

// NewPage builds the chrome for an authenticated screen, picking up
// ?status= and ?error= toasts.
func NewPage(r *http.Request, title, section string, s Settings) Page {
	p := Page{
		Title:         title,
		Status:        r.URL.Query().Get("status"),
		Error:         r.URL.Query().Get("error"),
		ToastDuration: s.ToastDuration,
	}
	if session, ok := sessioncontext.GetSessionFromContext(r.Context()); ok {
		p.Nav = nav.BuildTopNavData(session, section)
	}
	return p
}

// Write renders c with status.
func Write(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", slog.String("path", r.URL.Path), slog.Any("err", err))
	}
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json", slog.Any("err", err))
	}
}

// transient query keys never carried back to a list screen.
var transient = []string{"modal", "id", "status", "error", "_csrf"}

// ReturnQuery is the current query minus modal and toast keys, for
// redirecting back to the same list view.
func ReturnQuery(q url.Values) string {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	for _, k := range transient {
		out.Del(k)
	}
	return out.Encode()
}

// RedirectBack sends a 303 to path with the encoded return query and one
// toast. Unparseable return values are dropped.
func RedirectBack(w http.ResponseWriter, r *http.Request, path, returnQuery, status, errMsg string) {
	q, err := url.ParseQuery(returnQuery)
	if err != nil {
		q = url.Values{}
	}
	for _, k := range transient {
		q.Del(k)
	}
	if status != "" {
		q.Set("status", status)
	}
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	target := path
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
