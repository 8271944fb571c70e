package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/rustyeddy/rulebook/journal"
)

type ctxKey struct{}

// authenticate requires HTTP Basic credentials that match a profile.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="rulebook"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		p, err := s.store.Authenticate(r.Context(), email, password)
		if errors.Is(err, journal.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		if err != nil {
			s.fail(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func profileFrom(ctx context.Context) journal.Profile {
	p, _ := ctx.Value(ctxKey{}).(journal.Profile)
	return p
}
