package handlers

import (
	"net/http"
)

// Health handles GET /health. The database is probed so load balancers see
// an unhealthy instance before queries start failing; the completion service
// is probed when the configured client supports it.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "connected"
	code := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn("health check: database unreachable", "error", err)
		status = "degraded"
		dbStatus = "disconnected"
		code = http.StatusServiceUnavailable
	}

	payload := map[string]string{
		"status":   status,
		"database": dbStatus,
	}

	if h.oracle != nil {
		if h.oracle.HealthCheck(r.Context()) {
			payload["oracle"] = "connected"
		} else {
			h.log.Warn("health check: completion service unreachable")
			payload["oracle"] = "disconnected"
			payload["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, payload)
}
