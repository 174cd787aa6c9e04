package auth

import (
	"context"
	"net/http"

	"eventx/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "user_role"
)

// Middleware verifies the bearer token and places the user id and role in
// the request context.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			userID, role, err := issuer.Verify(rawToken)
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin callers. Must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != models.RoleAdmin {
			http.Error(w, "You do not have permission to perform this action", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID extracts the authenticated user's id from a request context.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// Role extracts the authenticated user's role from a request context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

// IsAdmin reports whether the context belongs to an administrator.
func IsAdmin(ctx context.Context) bool {
	return Role(ctx) == models.RoleAdmin
}
