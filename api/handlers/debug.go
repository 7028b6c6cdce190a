package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Debug handles POST /debug-query: routing and SQL synthesis without
// touching the database, so operators can inspect what a query would run.
func (h *Handlers) Debug(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		http.Error(w, "Query is required", http.StatusBadRequest)
		return
	}

	resp, err := h.pipeline.Debug(r.Context(), query)
	if err != nil {
		h.log.Error("debug query failed", "query", query, "error", err)
		h.writeError(w, "Failed to analyze query", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
