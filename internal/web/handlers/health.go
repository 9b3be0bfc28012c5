package handlers

import (
	"context"
	"net/http"
	"time"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthzHandler handles liveness probes (/healthz)
// Returns 200 if the application is running
func (h *Handler) healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
}

// readyzHandler handles readiness probes (/readyz)
// Checks every backend the container connected: the catalog database, the
// probe cache and, for the minio backend, the bucket
func (h *Handler) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := h.container.HealthChecks()
	results := make(map[string]string, len(checks))
	allHealthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			results[name] = healthStatusUnhealthy + ": " + err.Error()
			allHealthy = false
			continue
		}
		results[name] = healthStatusHealthy
	}

	response := HealthResponse{Status: healthStatusOK, Checks: results}
	status := http.StatusOK
	if !allHealthy {
		response.Status = healthStatusUnhealthy
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}
