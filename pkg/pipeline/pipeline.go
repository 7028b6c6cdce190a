// Package pipeline orchestrates a query end to end: intent pre-check, then
// route, synthesize, execute, and shape. Each step's output gates the next;
// there is no fan-out within one request.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/router"
	"github.com/watchtowerhq/watchtower/pkg/shape"
	"github.com/watchtowerhq/watchtower/pkg/store"
	"github.com/watchtowerhq/watchtower/pkg/synth"
)

// Response is the shaped payload returned for a processed query.
type Response struct {
	Type             string         `json:"type"`          // records, chart, text, error
	ResponseType     string         `json:"response_type"` // table, chart, summary, instruction, help, error
	Data             any            `json:"data"`
	QueryDescription string         `json:"query_description,omitempty"`
	TotalCount       int            `json:"total_count"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	GeneratedSQL     string         `json:"generated_sql,omitempty"`
	SQLAvailable     bool           `json:"sql_available"`
}

// DebugResponse reports routing and synthesis results without execution.
type DebugResponse struct {
	Query            string `json:"query"`
	Handler          string `json:"handler"`
	GeneratedSQL     string `json:"generated_sql"`
	QueryDescription string `json:"query_description"`
	UsedFallback     bool   `json:"used_fallback"`
}

// Pipeline wires the stages together.
type Pipeline struct {
	classifier *classify.Classifier
	router     *router.Router
	generator  *synth.Generator
	store      store.Querier
	detector   *shape.Detector
	registry   *Registry
	log        *slog.Logger
}

// New creates a Pipeline over the given stages.
func New(
	classifier *classify.Classifier,
	rt *router.Router,
	gen *synth.Generator,
	st store.Querier,
	det *shape.Detector,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		classifier: classifier,
		router:     rt,
		generator:  gen,
		store:      st,
		detector:   det,
		registry:   NewRegistry(log),
		log:        log,
	}
}

// Process answers a natural-language query with a shaped payload.
func (p *Pipeline) Process(ctx context.Context, query string) (*Response, error) {
	intent, err := p.detectIntent(ctx, query)
	if err != nil {
		return nil, err
	}
	p.log.Info("query intent detected", "intent", intent, "query", query)

	switch intent {
	case IntentCreateRule:
		return &Response{
			Type:         "text",
			ResponseType: "instruction",
			Data: map[string]string{
				"content": fmt.Sprintf("To create a new monitoring rule, you would need to configure: rule name, conditions, thresholds, and notification settings. Query: '%s'", query),
			},
		}, nil
	case IntentGenericQuestion:
		return &Response{
			Type:         "text",
			ResponseType: "help",
			Data:         genericHelp(),
		}, nil
	}

	return p.processMonitoring(ctx, query)
}

func (p *Pipeline) processMonitoring(ctx context.Context, query string) (*Response, error) {
	id, err := p.router.Route(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("routing failed: %w", err)
	}
	handler := p.registry.Resolve(id)
	p.log.Info("query routed", "handler", handler.Name())

	result, err := p.synthesize(ctx, handler, query)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}
	p.log.Debug("sql synthesized", "description", result.Description, "fallback", result.UsedFallback)

	rs, err := p.store.Query(ctx, result.SQL)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	outShape, err := p.detector.Detect(ctx, query)
	if err != nil {
		return nil, err
	}
	p.log.Info("query processed", "handler", handler.Name(), "shape", outShape, "rows", len(rs.Rows))

	resp := &Response{
		QueryDescription: result.Description,
		TotalCount:       len(rs.Rows),
		Metadata: map[string]any{
			"handler":       handler.Name(),
			"sql_generated": !result.UsedFallback,
		},
		GeneratedSQL: result.SQL,
		SQLAvailable: true,
	}

	switch outShape {
	case shape.ShapeChart:
		resp.Type = "chart"
		resp.ResponseType = "chart"
		resp.Data = shape.FormatChart(rs)
	case shape.ShapeText:
		resp.Type = "text"
		resp.ResponseType = "summary"
		resp.Data = shape.FormatText(rs, result.Description)
	default:
		resp.Type = "records"
		resp.ResponseType = "table"
		resp.Data = shape.FormatTable(rs)
	}
	return resp, nil
}

// Debug routes and synthesizes without touching the store, exposing the SQL
// a query would run.
func (p *Pipeline) Debug(ctx context.Context, query string) (*DebugResponse, error) {
	id, err := p.router.Route(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("routing failed: %w", err)
	}
	handler := p.registry.Resolve(id)

	result, err := p.synthesize(ctx, handler, query)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	return &DebugResponse{
		Query:            query,
		Handler:          handler.Name(),
		GeneratedSQL:     result.SQL,
		QueryDescription: result.Description,
		UsedFallback:     result.UsedFallback,
	}, nil
}

func (p *Pipeline) synthesize(ctx context.Context, h Handler, query string) (synth.Result, error) {
	if h.Analytics != nil {
		return p.generator.Analytics(ctx, h.Analytics, query)
	}
	return p.generator.Filtered(ctx, h.Table, query)
}
