package handlers

import (
	"net/http"
	"time"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler stamped with the build
// version and the process start time.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startedAt: time.Now(),
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Health reports process liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSONOK(w, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}
