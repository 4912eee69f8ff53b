package login

import (
	"log/slog"
	"net/http"

	"adminconsole/frontend/shared/viewstate"
	"adminconsole/infrastructure/cache"
	sessioncookie "adminconsole/infrastructure/session"
	"adminconsole/infrastructure/sqlite"
)

// LogoutHandler removes the session, its screens and the cookie.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.SessionCache, screens *viewstate.Registry, secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err == nil && cookie.Value != "" {
			sessionCache.Delete(cookie.Value)
			screens.Drop(cookie.Value)
			if err := DeleteSessionByToken(r.Context(), db, cookie.Value); err != nil {
				slog.Error("delete session", slog.Any("err", err))
			}
		}
		http.SetCookie(w, sessioncookie.Expired(secureCookie))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
