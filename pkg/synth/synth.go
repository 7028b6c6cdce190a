// Package synth turns a routed natural-language query into executable SQL.
// One generic engine serves every table through declarative descriptors:
// filtered fetches synthesize WHERE fragments against a fixed base query,
// analytics queries synthesize a full statement. Model failures never abort
// a query; the engine falls back to deterministic keyword matching.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/watchtowerhq/watchtower/pkg/llm"
)

// Result is a synthesized, executable statement.
type Result struct {
	SQL          string
	Description  string
	UsedFallback bool
}

// Generator synthesizes SQL via a completion service with keyword fallback.
type Generator struct {
	llm llm.Client
	log *slog.Logger
}

// NewGenerator creates a Generator around the given completion client.
func NewGenerator(client llm.Client, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Generator{llm: client, log: log}
}

const filterPromptHeader = `You are a SQL expert specializing in database queries for monitoring and rules systems.

IMPORTANT: You are working with POSTGRESQL database. Use PostgreSQL syntax.

Given a user's natural language query, generate appropriate SQL WHERE clause conditions for the %s table.

Table schema:
%s

CRITICAL: You must return a COMPLETE and VALID JSON response. The JSON must be properly closed with all brackets and braces.

Expected JSON format (MUST be complete):
{
    "where_conditions": ["condition1", "condition2"],
    "query_description": "human readable description"
}

Examples:
%s

Remember: Your response must be a COMPLETE JSON object. No partial responses.

User query: %s`

const analyticsPromptHeader = `You are a SQL expert specializing in complex analytics queries for monitoring rules systems.

IMPORTANT: You are working with POSTGRESQL database. Use PostgreSQL syntax.

Given a user's natural language query, generate a COMPLEX SQL query that involves joins and aggregations across the available tables.

Available tables:
%s

CRITICAL: You must return a COMPLETE and VALID JSON response. The JSON must be properly closed with all brackets and braces.

Expected JSON format (MUST be complete):
{
    "sql_query": "SELECT ... FROM ... JOIN ... WHERE ... GROUP BY ... ORDER BY ...",
    "query_description": "human readable description"
}

Examples:
%s

Remember: Your response must be a COMPLETE JSON object. No partial responses.

User query: %s`

type filterResponse struct {
	WhereConditions  []string `json:"where_conditions"`
	QueryDescription string   `json:"query_description"`
}

type analyticsResponse struct {
	SQLQuery         string `json:"sql_query"`
	QueryDescription string `json:"query_description"`
}

// Filtered synthesizes a filtered fetch against the descriptor's base query.
// The model proposes WHERE fragments; unparseable or unreachable models
// degrade to the descriptor's keyword rules.
func (g *Generator) Filtered(ctx context.Context, td *TableDescriptor, query string) (Result, error) {
	conditions, description, ok := g.filterConditions(ctx, td, query)
	if !ok {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		conditions, description = td.FallbackFilter(query)
		g.log.Info("filter synthesis fell back to keyword matching",
			"table", td.Name, "description", description)
		return Result{SQL: td.Assemble(conditions), Description: description, UsedFallback: true}, nil
	}
	return Result{SQL: td.Assemble(conditions), Description: description}, nil
}

func (g *Generator) filterConditions(ctx context.Context, td *TableDescriptor, query string) ([]string, string, bool) {
	prompt := fmt.Sprintf(filterPromptHeader, td.Name, td.Schema, td.Examples, query)

	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		g.log.Warn("filter synthesis completion failed", "table", td.Name, "error", err)
		return nil, "", false
	}
	if strings.TrimSpace(raw) == "" {
		g.log.Warn("filter synthesis returned empty completion", "table", td.Name)
		return nil, "", false
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		g.log.Warn("no JSON object in filter synthesis response", "table", td.Name)
		return nil, "", false
	}
	jsonStr = repairJSON(jsonStr)

	var resp filterResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		// Strict parse failed; scrape the two fields directly.
		conds, desc, ok := scrapeFilterFields(jsonStr, td.AllowedPrefixes)
		if !ok {
			g.log.Warn("filter synthesis JSON unrecoverable", "table", td.Name, "error", err)
			return nil, "", false
		}
		g.log.Debug("filter synthesis recovered from malformed JSON", "table", td.Name)
		return conds, desc, true
	}

	conditions := filterByPrefix(resp.WhereConditions, td.AllowedPrefixes)
	description := resp.QueryDescription
	if description == "" {
		description = td.DefaultDescription
	}
	return conditions, description, true
}

// filterByPrefix drops condition fragments that do not carry a known alias
// prefix. The fragments themselves are still model output; this checks shape,
// not safety.
func filterByPrefix(conditions, prefixes []string) []string {
	var kept []string
	for _, c := range conditions {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if hasAllowedPrefix(c, prefixes) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Analytics synthesizes a full analytics statement for the group. Model
// failures degrade to the descriptor's canned statements.
func (g *Generator) Analytics(ctx context.Context, ad *AnalyticsDescriptor, query string) (Result, error) {
	sql, description, ok := g.analyticsSQL(ctx, ad, query)
	if !ok {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		sql, description = ad.FallbackSQL(query)
		g.log.Info("analytics synthesis fell back to canned SQL",
			"group", ad.Group, "description", description)
		return Result{SQL: sql, Description: description, UsedFallback: true}, nil
	}
	return Result{SQL: sql, Description: description}, nil
}

func (g *Generator) analyticsSQL(ctx context.Context, ad *AnalyticsDescriptor, query string) (string, string, bool) {
	prompt := fmt.Sprintf(analyticsPromptHeader, ad.Schema, ad.Examples, query)

	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		g.log.Warn("analytics synthesis completion failed", "group", ad.Group, "error", err)
		return "", "", false
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		g.log.Warn("no JSON object in analytics synthesis response", "group", ad.Group)
		return "", "", false
	}
	jsonStr = repairJSON(jsonStr)

	var resp analyticsResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		g.log.Warn("analytics synthesis JSON unrecoverable", "group", ad.Group, "error", err)
		return "", "", false
	}
	if strings.TrimSpace(resp.SQLQuery) == "" {
		g.log.Warn("analytics synthesis response missing sql_query", "group", ad.Group)
		return "", "", false
	}

	description := resp.QueryDescription
	if description == "" {
		description = ad.DefaultDescription
	}
	return resp.SQLQuery, description, true
}
