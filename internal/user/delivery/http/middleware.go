package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pinned-app/pinned/pkg/auth"
	"github.com/pinned-app/pinned/pkg/logger"
)

type contextKey string

const (
	// UserIDKey carries the authenticated caller's id in the request context
	UserIDKey contextKey = "user_id"
	// UserNameKey carries the authenticated caller's display name
	UserNameKey contextKey = "user_name"
)

// AuthMiddleware validates the JWT bearer token and rejects requests
// without one
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondMiddlewareError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondMiddlewareError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Invalid token")
			respondMiddlewareError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserNameKey, claims.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is
// present but lets anonymous visitors through
func OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := auth.ValidateToken(parts[1]); err == nil {
				ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
				ctx = context.WithValue(ctx, UserNameKey, claims.Name)
				r = r.WithContext(ctx)
			}
		}

		next.ServeHTTP(w, r)
	}
}

// CallerID returns the authenticated caller's id, or zero for an
// anonymous request
func CallerID(r *http.Request) uint {
	if id, ok := r.Context().Value(UserIDKey).(uint); ok {
		return id
	}
	return 0
}

func respondMiddlewareError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
