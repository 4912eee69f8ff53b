package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

const CookieName = "X-Session-Token"

// Cookie builds the session cookie. maxAge < 0 clears it.
func Cookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// Expired returns a cookie that removes the session in the browser.
func Expired(secure bool) *http.Cookie {
	return Cookie("", -1, secure)
}

// NewToken returns a random URL-safe session token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Expiry returns the expiry of a session started now.
func Expiry(now time.Time, d time.Duration) time.Time {
	return now.Add(d)
}
