package middleware

import (
	"context"
	"net/http"
)

type contextKey struct{}

// UserSource resolves the signed-in user of a request.
type UserSource interface {
	UserID(r *http.Request) (string, error)
}

// RequireAuthentication is a middleware that checks if the user is
// authenticated and stores their ID in the request context.
func RequireAuthentication(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := users.UserID(r)
			if err != nil || userID == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user stored by RequireAuthentication.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
