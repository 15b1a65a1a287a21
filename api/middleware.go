package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codehive/codehive/auth"
	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/types"
)

type contextKey int

const userContextKey contextKey = iota

// UserFromContext returns the authenticated user set by the auth middleware.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(userContextKey).(types.User)
	return user, ok
}

// authMiddleware verifies the bearer token and resolves the user record. A
// token whose user is not stored yet gets a minimal record created, so the
// websocket join that follows can find it.
func authMiddleware(authenticator *auth.Authenticator, persister persistence.Persister) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				respondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userId, err := authenticator.Verify(r.Context(), token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user := types.User{Id: userId}
			if err := persister.GetUser(&user); err != nil {
				if !errors.Is(err, persistence.ErrNotFound) {
					globals.AppLogger.Error("could not load user", "user", userId, "error", err)
					respondError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				user.LastOnline = time.Now()
				if err := persister.StoreUser(user); err != nil {
					globals.AppLogger.Error("could not create user", "user", userId, "error", err)
					respondError(w, http.StatusInternalServerError, "internal server error")
					return
				}
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
