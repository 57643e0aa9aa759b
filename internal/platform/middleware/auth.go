package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates a host bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*HostClaims, error)
}

// HostClaims is what the auth middleware needs from a validated token.
type HostClaims struct {
	HostID  string
	TokenID string
}

type contextKeyHostID struct{}

// ContextKeyHostID is exported for tests that build contexts by hand.
var ContextKeyHostID = contextKeyHostID{}

// GetHostID returns the authenticated host, or "" when auth is disabled.
func GetHostID(ctx context.Context) string {
	hostID, ok := ctx.Value(ContextKeyHostID).(string)
	if !ok {
		return ""
	}
	return hostID
}

// RequireHostToken rejects requests without a valid bearer token. A nil
// validator disables the check.
func RequireHostToken(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized host - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(ctx, w, logger, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized host - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(ctx, w, logger, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyHostID, claims.HostID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, err := w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
	if err != nil {
		logger.ErrorContext(ctx, "failed to write unauthorized response",
			"error", err,
			"request_id", GetRequestID(ctx),
		)
	}
}
