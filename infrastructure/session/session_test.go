package session

import (
	"testing"
	"time"
)

func TestNewTokenIsUnique(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	b, _ := NewToken()
	if a == "" || a == b {
		t.Fatalf("expected distinct tokens, got %q and %q", a, b)
	}
}

func TestExpiredCookieClears(t *testing.T) {
	c := Expired(true)
	if c.MaxAge >= 0 || c.Value != "" || !c.Secure || !c.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", c)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := Expiry(now, 12*time.Hour); !got.Equal(now.Add(12 * time.Hour)) {
		t.Fatalf("unexpected expiry %v", got)
	}
}
