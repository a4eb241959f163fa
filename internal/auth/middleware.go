package auth

import (
	"context"
	"net/http"

	"github.com/sadman/hostelreview/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// userID value — plain string keys can collide across packages.
type contextKey string

const userIDKey contextKey = "userID"

// CookieName is the session cookie holding the JWT.
const CookieName = "token"

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// userID in the request context. Missing or invalid tokens get a 401 and
// the chain stops. The token lives in an HttpOnly cookie so page scripts
// cannot steal it.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present but
// does NOT block the request when it's missing or invalid.
//
// Used on public routes where anonymous visitors can still read, but a
// logged-in user's identity is attached to what they submit. Handlers
// check via UserIDFromContext — ("", false) means anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates the maintenance surface. It must be chained after
// RequireAuth; it looks the authenticated user up and rejects anyone whose
// email is not the configured admin address.
func RequireAdmin(users repository.UserRepository, adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil || user.Email != adminEmail {
				http.Error(w, `{"error":"forbidden","message":"admin access required"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) when the request is anonymous.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the JWT cookie and validates it. Shared by
// RequireAuth and OptionalAuth.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
