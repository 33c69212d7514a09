// Package api provides the HTTP surface of the snapfile server: the
// router, the middleware chain and the server lifecycle.
package api

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/api/handlers"
	"github.com/snapfile/snapfile/pkg/api/middleware"
	"github.com/snapfile/snapfile/pkg/auth"
	"github.com/snapfile/snapfile/pkg/config"
	"github.com/snapfile/snapfile/pkg/metadata"
	"github.com/snapfile/snapfile/pkg/metrics"
	"github.com/snapfile/snapfile/pkg/ratelimit"
	"github.com/snapfile/snapfile/pkg/storage"
)

// Deps carries the wired services the router hands to its handlers.
type Deps struct {
	Config  *config.Config
	Meta    *metadata.Service
	Tokens  *auth.Service
	Limiter *ratelimit.Limiter
	Files   storage.Store
	Metrics *metrics.HTTPMetrics
	Version string
}

// NewRouter builds the API router.
//
// Middleware order matters: admission control runs before authentication
// so a flooding client is rejected before any token work happens, and
// both run after the request logger so rejections still show up in the
// logs with their request ID.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(d.Metrics))
	r.Use(chimiddleware.Recoverer)

	timeout := d.Config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	r.Use(chimiddleware.Timeout(timeout))

	r.Use(middleware.Admission(d.Limiter, d.Metrics))
	r.Use(middleware.JWTAuth(d.Tokens, d.Config.Auth.DisabledRoutes, d.Metrics))

	authHandler := handlers.NewAuthHandler(d.Tokens, d.Config.Auth.AdminUsername, d.Config.Auth.AdminPasswordHash, d.Metrics)
	folderHandler := handlers.NewFolderHandler(d.Meta, d.Metrics)
	fileHandler := handlers.NewFileHandler(d.Meta, d.Files, d.Metrics)
	healthHandler := handlers.NewHealthHandler(d.Version)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/verify", authHandler.Verify)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", folderHandler.List)
			r.Post("/", folderHandler.Create)
			r.Delete("/{id}", folderHandler.Delete)
			r.Put("/{id}/move", folderHandler.Move)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/", fileHandler.List)
			r.Delete("/{filename}", fileHandler.Delete)
			r.Put("/{filename}/move", fileHandler.Move)
		})
	})

	return r
}

// requestLogger logs request start and completion with structured
// fields, and records the request in the metrics registry. Health checks
// complete at debug level to keep probe noise out of the logs.
func requestLogger(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lc := logger.NewLogContext(clientIP(r)).
				WithRequest(r.Method, r.URL.Path).
				WithRequestID(chimiddleware.GetReqID(r.Context()))
			ctx := logger.WithContext(r.Context(), lc)
			r = r.WithContext(ctx)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger.DebugCtx(ctx, "request started")

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := routePattern(r)
			m.RecordRequest(r.Method, route, ww.Status(), duration)

			logFn := logger.InfoCtx
			if isHealthPath(r.URL.Path) {
				logFn = logger.DebugCtx
			}
			logFn(ctx, "request completed",
				logger.Status(ww.Status()),
				logger.Bytes(ww.BytesWritten()),
				logger.DurationMs(duration))
		})
	}
}

// routePattern returns the chi route pattern matched by the request, so
// metrics label cardinality stays bounded. Unmatched requests fall back
// to the literal path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// clientIP returns the peer host without the port. RealIP has already
// folded the forwarding headers into RemoteAddr at this point, in which
// case RemoteAddr carries no port and is returned as is.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// isHealthPath reports whether the path is a liveness probe.
func isHealthPath(path string) bool {
	return path == "/api/health" || path == "/health"
}
