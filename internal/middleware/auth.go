package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

type contextKey string

const userContextKey contextKey = "current_user"

// ExtractBearerToken pulls the token from an Authorization header value.
// Returns "" when the header is missing or not a Bearer scheme.
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

// RequestToken resolves the session token for a request. Browsers cannot set
// headers on WebSocket upgrades, so a token query parameter is accepted too.
func RequestToken(r *http.Request) string {
	if token := ExtractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// RequireAuth validates the session token and loads the current user into the
// request context. Inactive accounts are rejected even with a valid session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := RequestToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		userID, ok, err := services.ValidateSession(r.Context(), token)
		if err != nil || !ok {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		user, err := services.GetUserByID(r.Context(), userID)
		if err != nil || user == nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		if !user.IsActive {
			writeAuthError(w, http.StatusForbidden, "This account has been deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// RequirePermission gates a route on a single authorization action.
func RequirePermission(action services.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			decision := services.Can(user, action)
			if !decision.Allowed {
				writeAuthError(w, http.StatusForbidden, decision.Reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
