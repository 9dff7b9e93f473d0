package server

import (
	"context"
	"errors"
	"net/http"
)

var errNoSession = errors.New("no valid session")

const sessionCookieName = "festboard_session"

type ctxKey int

const ctxKeyUser ctxKey = iota

// userFromRequest reads the session cookie and resolves the logged-in user.
func userFromRequest(r *http.Request, store Gateway) (User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return User{}, errNoSession
	}
	u, err := store.SessionUser(r.Context(), cookie.Value)
	if errors.Is(err, ErrNotFound) {
		return User{}, errNoSession
	}
	return u, err
}

// requireRole authenticates the session and checks the user's role against
// the allowed set. Admins pass every check. The user lands in the request
// context for handlers that need role-specific scope.
func requireRole(store Gateway, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := userFromRequest(r, store)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !allowed[u.Role] && u.Role != RoleAdmin {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestUser returns the user stored by requireRole.
func requestUser(r *http.Request) User {
	u, _ := r.Context().Value(ctxKeyUser).(User)
	return u
}
