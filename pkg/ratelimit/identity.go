package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// fallbackIdentity is used when no address can be derived at all.
const fallbackIdentity = "127.0.0.1"

// ClientIdentity derives the admission key for a request.
//
// Priority: first IP in X-Forwarded-For, then X-Real-IP, then the
// transport peer address, then a loopback fallback. Forwarded headers are
// taken at face value, which is only sound behind a controlled reverse
// proxy; deployments exposed directly to clients should strip these
// headers at the edge.
func ClientIdentity(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return fallbackIdentity
}
