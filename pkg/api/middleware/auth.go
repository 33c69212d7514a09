// Package middleware provides HTTP middleware for the snapfile API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/api/handlers"
	"github.com/snapfile/snapfile/pkg/auth"
	"github.com/snapfile/snapfile/pkg/metrics"
)

// Context key type for storing claims
type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaimsFromContext retrieves JWT claims from the request context.
// Returns nil if no claims are present.
//
// This function should only be called within handler code that runs
// after the JWTAuth middleware. For exempt routes it returns nil.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractBearerToken extracts the token from a Bearer Authorization header.
// Returns the token string and true if successful, or empty string and false if not.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

// JWTAuth validates Bearer access tokens on every request whose path does
// not match an exempt prefix. Valid claims are stored in the request
// context and the authenticated username is attached to the log context.
// Missing, invalid, expired and revoked tokens all produce the same 401.
func JWTAuth(tokens *auth.Service, exemptPrefixes []string, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pathIsExempt(r.URL.Path, exemptPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := extractBearerToken(r)
			if !ok {
				m.RecordAuthFailure()
				handlers.Unauthorized(w, "authorization header required")
				return
			}

			claims, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				m.RecordAuthFailure()
				logger.DebugCtx(r.Context(), "token rejected", logger.Err(err))
				handlers.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithUsername(claims.Subject))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// pathIsExempt reports whether the path matches any exempt prefix.
func pathIsExempt(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
