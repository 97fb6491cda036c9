// Package mw contains HTTP middleware.
package mw

import (
	"context"
	"errors"
	"net/http"

	"github.com/screenery/screenery/internal/models"
	"github.com/screenery/screenery/internal/service"
)

// ContextKey is a type for context keys.
type ContextKey string

// APIKeyContextKey is the context key for the authenticated API key.
const APIKeyContextKey ContextKey = "api_key"

// Auth returns middleware that authenticates the X-API-Key header and charges
// the request against the key's hourly quota.
func Auth(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-API-Key")
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			key, err := authSvc.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrRateLimited):
					w.Header().Set("Retry-After", "3600")
					writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				case errors.Is(err, service.ErrUnauthenticated):
					writeError(w, http.StatusUnauthorized, "invalid or inactive API key")
				default:
					writeError(w, http.StatusInternalServerError, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects non-admin keys. Must run after
// Auth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetAPIKey(r.Context())
			if key == nil || !key.IsAdmin {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAPIKey extracts the authenticated API key from context.
func GetAPIKey(ctx context.Context) *models.APIKey {
	key, ok := ctx.Value(APIKeyContextKey).(*models.APIKey)
	if !ok {
		return nil
	}
	return key
}

// writeError emits a minimal JSON error body shaped like huma's ErrorModel
// detail field, keeping raw and typed handlers consistent.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"detail":"` + detail + `"}`))
}
