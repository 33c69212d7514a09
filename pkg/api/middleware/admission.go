package middleware

import (
	"net/http"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/api/handlers"
	"github.com/snapfile/snapfile/pkg/metrics"
	"github.com/snapfile/snapfile/pkg/ratelimit"
)

// Admission throttles requests per (route class, client identity) token
// bucket before any other processing. Paths matching a disabled prefix
// bypass limiting entirely. Rejected requests get a 429 problem response
// and never reach the handler chain.
func Admission(limiter *ratelimit.Limiter, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class, limited := limiter.Classify(r.URL.Path)
			if !limited {
				next.ServeHTTP(w, r)
				return
			}

			clientID := ratelimit.ClientIdentity(r)
			if !limiter.Allow(class, clientID) {
				m.RecordRateLimitRejection(string(class))
				logger.DebugCtx(r.Context(), "request rejected by admission control",
					logger.RouteClass(string(class)),
					logger.ClientIP(clientID))
				w.Header().Set("Retry-After", "1")
				handlers.TooManyRequests(w, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
