package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/watchtowerhq/watchtower/api/metrics"
)

type QueryRequest struct {
	Query string `json:"query"`
}

// Query handles POST /query: the full natural language pipeline from
// classification through SQL execution and response shaping.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.pipeline.Process(r.Context(), query)
	if err != nil {
		h.log.Error("query failed", "query", query, "error", err)
		h.writeError(w, "Failed to process query", err)
		return
	}

	metrics.QueriesTotal.WithLabelValues(resp.ResponseType).Inc()
	if sql, ok := resp.Metadata["sql_generated"].(bool); ok && !sql {
		metrics.SynthesisFallbacks.Inc()
	}

	writeJSON(w, http.StatusOK, resp)
}
