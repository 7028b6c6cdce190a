// Package handlers implements the HTTP endpoints of the query API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/llm"
	"github.com/watchtowerhq/watchtower/pkg/pipeline"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OracleChecker reports whether the completion service is reachable. Optional;
// the Anthropic client has no probe endpoint and passes nil.
type OracleChecker interface {
	HealthCheck(ctx context.Context) bool
}

type Handlers struct {
	pipeline *pipeline.Pipeline
	store    Pinger
	oracle   OracleChecker
	log      *slog.Logger
}

func New(p *pipeline.Pipeline, store Pinger, oracle OracleChecker, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handlers{pipeline: p, store: store, oracle: oracle, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline failures onto HTTP statuses. Connectivity
// problems with the completion service are reported as 503 so callers
// can retry; classification rejections are the caller's query and get
// a 400; everything else is a 500.
func (h *Handlers) writeError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, llm.ErrConnectivity):
		status = http.StatusServiceUnavailable
	case errors.Is(err, classify.ErrInvalidLabel), errors.Is(err, classify.ErrEmptyResponse):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{
		"type":          "error",
		"response_type": "error",
		"data": map[string]string{
			"error":   err.Error(),
			"message": message,
		},
	})
}
