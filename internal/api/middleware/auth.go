package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lmerrick/dashguard/internal/api/apierr"
	"github.com/lmerrick/dashguard/internal/auth"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// OptionalAuth extracts a verified registered user id from a bearer token
// when one is present. Unauthenticated requests proceed as guests; a token
// that fails verification is rejected rather than silently downgraded.
func OptionalAuth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUserID returns the verified registered user id from the request
// context, or empty string for guests
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}
