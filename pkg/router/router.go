// Package router maps a natural-language question onto the table handler that
// should answer it. Routing cascades through up to three classifications:
// group, then (for the rules group) current-vs-historical data, then the table
// within the group. Any classification failure aborts the route; a wrong table
// produces a confidently wrong answer, which is worse than an error.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/watchtowerhq/watchtower/pkg/classify"
)

// Group is a top-level query domain.
type Group string

const (
	GroupMonitor Group = "MONITOR_GROUP"
	GroupFacts   Group = "FACTS_GROUP"
	GroupRules   Group = "RULES_GROUP"
	GroupActions Group = "ACTIONS_GROUP"
)

// DataType distinguishes current rule state from historical rule events.
type DataType string

const (
	DataCurrent    DataType = "CURRENT_DATA"
	DataHistorical DataType = "HISTORICAL_DATA"
)

// Table identifies the table (or the analytics path) a query resolves to.
type Table string

const (
	TableMonitoredFeeds    Table = "MONITORED_FEEDS"
	TableMonitorConditions Table = "MONITOR_CONDITIONS"
	TableMonitorFacts      Table = "MONITOR_FACTS"
	TableMonitorRules      Table = "MONITOR_RULES"
	TableRulesDefinitions  Table = "RULES_DEFINITIONS"
	TableRulesActions      Table = "RULES_ACTIONS"
	TableActionExecutors   Table = "ACTION_EXECUTORS"
	TableMonitorRulesLogs  Table = "MONITOR_RULES_LOGS"
	TableAnalytics         Table = "ANALYTICS"
)

// HandlerID names the handler responsible for a routed query. Analytics
// queries keep their group so the right analytics context is used.
type HandlerID struct {
	Group Group
	Table Table
}

func (h HandlerID) String() string {
	return string(h.Group) + "/" + string(h.Table)
}

var (
	groupLabels    = []string{string(GroupMonitor), string(GroupFacts), string(GroupRules), string(GroupActions)}
	dataTypeLabels = []string{string(DataCurrent), string(DataHistorical)}

	monitorTableLabels = []string{string(TableMonitoredFeeds), string(TableMonitorConditions), string(TableAnalytics)}
	factsTableLabels   = []string{string(TableMonitorFacts), string(TableAnalytics)}
	rulesCurrentLabels = []string{
		string(TableMonitorRules), string(TableRulesDefinitions), string(TableRulesActions),
		string(TableActionExecutors), string(TableAnalytics),
	}
	rulesHistoricalLabels = []string{string(TableMonitorRulesLogs), string(TableAnalytics)}
	actionsTableLabels    = []string{string(TableActionExecutors), string(TableAnalytics)}
)

// Router resolves queries to handlers via cascading classification.
type Router struct {
	classifier *classify.Classifier
	prompts    *Prompts
	log        *slog.Logger
}

// New creates a Router over the given classifier, loading the embedded
// classification prompts.
func New(classifier *classify.Classifier, log *slog.Logger) (*Router, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, fmt.Errorf("failed to load routing prompts: %w", err)
	}
	return &Router{
		classifier: classifier,
		prompts:    prompts,
		log:        log,
	}, nil
}

// Route classifies the query down to a HandlerID. Classification errors
// propagate unchanged so the caller can distinguish connectivity failures
// from invalid model output.
func (r *Router) Route(ctx context.Context, query string) (HandlerID, error) {
	group, err := r.classifyGroup(ctx, query)
	if err != nil {
		return HandlerID{}, fmt.Errorf("group classification: %w", err)
	}
	r.log.Debug("query group classified", "group", group)

	table, err := r.classifyTable(ctx, query, group)
	if err != nil {
		return HandlerID{}, fmt.Errorf("table classification for %s: %w", group, err)
	}
	r.log.Debug("query table classified", "group", group, "table", table)

	return HandlerID{Group: group, Table: table}, nil
}

func (r *Router) classifyGroup(ctx context.Context, query string) (Group, error) {
	label, err := r.classifier.Classify(ctx, render(r.prompts.Group, query), groupLabels)
	if err != nil {
		return "", err
	}
	return Group(label), nil
}

func (r *Router) classifyTable(ctx context.Context, query string, group Group) (Table, error) {
	var prompt string
	var labels []string

	switch group {
	case GroupMonitor:
		prompt, labels = r.prompts.MonitorTables, monitorTableLabels
	case GroupFacts:
		prompt, labels = r.prompts.FactsTables, factsTableLabels
	case GroupActions:
		prompt, labels = r.prompts.ActionsTables, actionsTableLabels
	case GroupRules:
		dataType, err := r.classifyRulesDataType(ctx, query)
		if err != nil {
			return "", fmt.Errorf("data type classification: %w", err)
		}
		r.log.Debug("rules data type classified", "data_type", dataType)
		if dataType == DataHistorical {
			prompt, labels = r.prompts.RulesHistoricalTables, rulesHistoricalLabels
		} else {
			prompt, labels = r.prompts.RulesCurrentTables, rulesCurrentLabels
		}
	default:
		return "", fmt.Errorf("unknown group %q", group)
	}

	label, err := r.classifier.Classify(ctx, render(prompt, query), labels)
	if err != nil {
		return "", err
	}
	return Table(label), nil
}

func (r *Router) classifyRulesDataType(ctx context.Context, query string) (DataType, error) {
	label, err := r.classifier.Classify(ctx, render(r.prompts.RulesDataType, query), dataTypeLabels)
	if err != nil {
		return "", err
	}
	return DataType(label), nil
}
