package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"taskdeck/internal/identity"
	"taskdeck/internal/token"
)

type contextKey int

const userKey contextKey = iota

// currentUser returns the authenticated user placed on the context by
// authenticate. Nil on unauthenticated routes.
func currentUser(r *http.Request) *identity.User {
	u, _ := r.Context().Value(userKey).(*identity.User)
	return u
}

// authenticate validates the bearer access token, loads the subject, and
// requires an active account. Runs on every authenticated route.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.tokens.Validate(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err := token.RequireType(claims, token.TypeAccess); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := s.identity.GetByID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			s.writeDomainError(w, err)
			return
		}
		if !user.IsActive {
			writeError(w, http.StatusForbidden, identity.ErrAccountInactive.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return tok, tok != ""
}
