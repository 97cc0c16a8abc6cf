package httpx

import (
	"context"
	"slices"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

// Session is the authenticated principal attached to a request.
type Session struct {
	UserID      string
	DisplayName string
	Scopes      []string
}

// HasScope reports whether the session carries scope.
func (s Session) HasScope(scope string) bool {
	return slices.Contains(s.Scopes, scope)
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext returns the session set by AuthnMiddleware or
// SessionMiddleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(Session)
	return s, ok
}
