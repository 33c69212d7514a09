// Package metrics provides Prometheus instrumentation for the server.
//
// Collection is opt-in: recorders are nil when the registry was never
// initialized, and every Record method is safe to call on a nil receiver,
// so instrumented code paths carry zero overhead when metrics are off.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry. Call once at
// startup, before constructing recorders.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
}

// IsEnabled reports whether the registry has been initialized.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// resetForTesting drops the registry so each test starts clean.
func resetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
}
