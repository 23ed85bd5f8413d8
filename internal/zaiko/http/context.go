package http

import (
	"context"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

type ctxKey string

const (
	ctxKeySession    ctxKey = "session"
	ctxKeyActiveClub ctxKey = "active_club"
)

func withSession(ctx context.Context, session *domain.Session) context.Context {
	ctx = context.WithValue(ctx, ctxKeySession, session)
	return context.WithValue(ctx, ctxKeyActiveClub, session.ActiveClub)
}

// sessionFrom returns the verified session attached by the middleware.
func sessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(ctxKeySession).(*domain.Session)
	return s
}

// ActiveClub is the single piece of authorization context downstream
// handlers receive: the club the verified session currently operates
// under. It is never taken from the URL.
func ActiveClub(ctx context.Context) string {
	club, _ := ctx.Value(ctxKeyActiveClub).(string)
	return club
}
