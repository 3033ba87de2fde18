package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/jrsteele09/go-school-portal/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the session the page was entered with
	ContextKeySession ContextKey = "session"
)

// RequirePage runs the page guard before a page handler. A visitor that may
// not see the page is redirected (htmx aware) to where the guard sends them.
func (s *Server) RequirePage() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, _ := s.manager.Current()

			redirect, allowed := auth.GuardPage(session, r.URL.Path)
			if !allowed {
				log.Debug().Str("path", r.URL.Path).Str("redirect", redirect).Msg("page guard redirect")
				redirectSuccess(w, r, redirect)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromContext returns the session stored by RequirePage
func sessionFromContext(ctx context.Context) (sessions.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(sessions.Session)
	return session, ok && session.Active()
}
