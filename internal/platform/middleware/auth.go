package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eima40x4c/CampusCard/internal/authz"
	"github.com/eima40x4c/CampusCard/internal/domain"
)

// TokenValidator defines the interface for validating session tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*Identity, error)
}

// Identity represents the authenticated caller extracted from a session token
type Identity struct {
	UserID int64
	Email  string
	Role   domain.Role
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for use in handlers and tests
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated caller from the context.
// Returns nil when the request was not authenticated.
func GetIdentity(ctx context.Context) *Identity {
	identity, ok := ctx.Value(ContextKeyIdentity).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// WithIdentity injects an identity into a context. Useful for service and
// handler tests that skip the HTTP middleware chain.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// caller identity in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			identity, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth stores the caller identity when a valid Bearer token is
// present, and lets the request through anonymously otherwise. Used on routes
// whose response depends on who is asking but that are open to everyone.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok && token != "" {
				if identity, err := validator.ValidateToken(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route on the admin tier. Must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity := GetIdentity(ctx)
			if identity == nil || !authz.Allowed(identity.Role, authz.TierAdmin) {
				logger.WarnContext(ctx, "forbidden access - admin role required",
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin role required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
