package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cipherpoint/cipherpoint-backend/internal/services"
)

type contextKey string

// UserIDKey holds the authenticated user's id in the request context.
const UserIDKey contextKey = "userID"

// ExtractBearerToken pulls the token out of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid session token and stashes the
// caller's user id in the context for the handlers.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			// Browser WebSocket clients cannot set headers; allow a
			// query-parameter fallback.
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"access token required"}`))
			return
		}

		userID, ok, err := services.ValidateSession(token)
		if err != nil || !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"invalid token"}`))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id put there by RequireAuth.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}
