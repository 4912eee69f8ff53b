package context

import (
	"context"

	"adminconsole/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// OperatorID returns the signed-in operator, or 0.
func OperatorID(ctx context.Context) int64 {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.OperatorID
	}
	return 0
}

// SessionID returns the session token, or "".
func SessionID(ctx context.Context) string {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.ID
	}
	return ""
}

// Can reports whether the signed-in operator holds code.
func Can(ctx context.Context, code string) bool {
	s, ok := GetSessionFromContext(ctx)
	return ok && s.Can(code)
}
