package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records request-pipeline observations: request outcomes,
// admission rejections, auth failures, and metadata operation counts.
type HTTPMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	rateLimitRejects *prometheus.CounterVec
	authFailures     prometheus.Counter
	metadataOps      *prometheus.CounterVec
	revokedTokens    prometheus.Gauge
}

// NewHTTPMetrics creates a Prometheus-backed recorder.
//
// Returns nil if metrics are not enabled (InitRegistry not called); all
// Record methods tolerate a nil receiver.
func NewHTTPMetrics() *HTTPMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &HTTPMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapfile_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snapfile_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		rateLimitRejects: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapfile_ratelimit_rejections_total",
				Help: "Total number of requests rejected by admission control, by route class",
			},
			[]string{"class"},
		),
		authFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "snapfile_auth_failures_total",
				Help: "Total number of failed token validations and logins",
			},
		),
		metadataOps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapfile_metadata_operations_total",
				Help: "Total number of metadata operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		revokedTokens: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "snapfile_revoked_tokens",
				Help: "Current number of live revocation entries",
			},
		),
	}
}

// RecordRequest records a completed HTTP request.
func (m *HTTPMetrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimitRejection records a request rejected by admission control.
func (m *HTTPMetrics) RecordRateLimitRejection(class string) {
	if m == nil {
		return
	}
	m.rateLimitRejects.WithLabelValues(class).Inc()
}

// RecordAuthFailure records a failed token validation or login attempt.
func (m *HTTPMetrics) RecordAuthFailure() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}

// RecordMetadataOp records a metadata operation and its outcome
// ("ok" or "error").
func (m *HTTPMetrics) RecordMetadataOp(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.metadataOps.WithLabelValues(operation, outcome).Inc()
}

// SetRevokedTokens records the current revocation set size.
func (m *HTTPMetrics) SetRevokedTokens(n int) {
	if m == nil {
		return
	}
	m.revokedTokens.Set(float64(n))
}
