package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/syncdays/internal/auth"
	"github.com/mmynk/syncdays/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionKey is the context key for storing the authenticated session.
const SessionKey contextKey = "session"

// GetSession extracts the authenticated session from the context.
// Returns nil if the request was not authenticated.
func GetSession(ctx context.Context) *models.Session {
	session, _ := ctx.Value(SessionKey).(*models.Session)
	return session
}

// GetUserID extracts the authenticated user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if session := GetSession(ctx); session != nil {
		return session.UID
	}
	return ""
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAuth returns middleware that rejects requests lacking a valid
// bearer token. On success the session is added to the request context.
func RequireAuth(verifier auth.Verifier, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				onError(w, r, auth.ErrMissingToken)
				return
			}

			token, ok := BearerToken(header)
			if !ok {
				onError(w, r, auth.ErrInvalidToken)
				return
			}

			session, err := verifier.Verify(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that validates a bearer token if one
// is present but lets unauthenticated requests through. Invalid tokens
// are treated as anonymous rather than rejected.
func OptionalAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := BearerToken(r.Header.Get("Authorization")); ok {
				if session, err := verifier.Verify(r.Context(), token); err == nil {
					ctx := context.WithValue(r.Context(), SessionKey, session)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
