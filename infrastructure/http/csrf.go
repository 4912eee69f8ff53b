package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	csrfCookieName = "X-CSRF-Token"
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "_csrf"
	csrfTokenBytes = 32
)

// CSRFMiddleware checks the double-submit token on unsafe methods. Pages
// post it as the _csrf field; the validate endpoint sends it as a header.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ensureCSRFToken(w, r, s.secureCookie)
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if !validCSRF(token, submittedCSRF(r)) {
			slog.Warn("csrf rejected",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetReqID(r.Context())))
			if strings.Contains(r.Header.Get("Accept"), "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"invalid csrf token"}`))
				return
			}
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func submittedCSRF(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(csrfHeaderName)); v != "" {
		return v
	}
	return strings.TrimSpace(r.FormValue(csrfFormField))
}

func validCSRF(expected, provided string) bool {
	return provided != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// ensureCSRFToken returns the cookie token, issuing one when absent. The
// cookie stays readable by scripts so pages can copy it into forms.
func ensureCSRFToken(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	token := randomToken(csrfTokenBytes)
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func randomToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
