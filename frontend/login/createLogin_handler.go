package login

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adminconsole/infrastructure/cache"
	sessioncookie "adminconsole/infrastructure/session"
	"adminconsole/infrastructure/sqlite"
	"adminconsole/models"
)

// Landing is where a fresh session starts.
const Landing = "/console/users"

// Options for the login handler.
type Options struct {
	SessionDuration time.Duration
	SecureCookie    bool
}

// CreateLoginHandler authenticates the operator and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.SessionCache, operatorCache *cache.OperatorCache, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectLoginError(w, r, "Datos de formulario no válidos")
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			redirectLoginError(w, r, "Usuario y contraseña son obligatorios")
			return
		}

		op, err := authenticateOperator(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				slog.Warn("login rejected", slog.String("username", username))
				redirectLoginError(w, r, "Usuario o contraseña incorrectos")
				return
			}
			slog.Error("login failed", slog.String("username", username), slog.Any("err", err))
			redirectLoginError(w, r, "No se pudo iniciar sesión")
			return
		}

		token, err := sessioncookie.NewToken()
		if err != nil {
			slog.Error("session token", slog.Any("err", err))
			redirectLoginError(w, r, "No se pudo crear la sesión")
			return
		}
		session := models.Session{
			ID:            token,
			OperatorID:    op.ID,
			Operator:      op,
			OperatorRoles: []string{op.Role},
			ExpiresAt:     sessioncookie.Expiry(time.Now(), opts.SessionDuration),
		}
		if err := persistSession(r.Context(), db, session); err != nil {
			slog.Error("persist session", slog.Int64("operator_id", op.ID), slog.Any("err", err))
			redirectLoginError(w, r, "No se pudo crear la sesión")
			return
		}

		sessionCache.Add(session)
		operatorCache.Add(op)

		http.SetCookie(w, sessioncookie.Cookie(session.ID, int(opts.SessionDuration.Seconds()), opts.SecureCookie))
		http.Redirect(w, r, Landing, http.StatusSeeOther)
	}
}

func redirectLoginError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
