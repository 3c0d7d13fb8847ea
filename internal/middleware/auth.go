package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/session"
)

type CtxKey int

const (
	CtxSession CtxKey = iota
)

// BearerToken reads the token from the Authorization header, falling back to
// the "token" query parameter that browsers must use for websockets.
func BearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

// Auth admits requests whose token was issued for the session in the {id}
// path segment and stores that session in the request context.
func Auth(sessions *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			s, err := sessions.Authorize(r.PathValue("id"), token)
			switch {
			case err == nil:
			case errors.Is(err, session.ErrNotFound):
				w.WriteHeader(http.StatusNotFound)
				return
			default:
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), CtxSession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Session(r *http.Request) (*session.Session, bool) {
	s, ok := r.Context().Value(CtxSession).(*session.Session)
	return s, ok
}
