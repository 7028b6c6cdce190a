package pipeline

import (
	"log/slog"

	"github.com/watchtowerhq/watchtower/pkg/router"
	"github.com/watchtowerhq/watchtower/pkg/synth"
)

// Handler is a resolved query handler: either a filtered fetch against one
// table or a group-level analytics synthesis. Exactly one field is set.
type Handler struct {
	Table     *synth.TableDescriptor
	Analytics *synth.AnalyticsDescriptor
}

// Name identifies the handler in logs and response metadata.
func (h Handler) Name() string {
	if h.Analytics != nil {
		return string(h.Analytics.Group) + "/analytics"
	}
	return h.Table.Name
}

// validTables lists the table handlers reachable from each group. Routing
// should only produce these combinations; anything else is an anomaly.
var validTables = map[router.HandlerID]router.Table{
	{Group: router.GroupMonitor, Table: router.TableMonitoredFeeds}:    router.TableMonitoredFeeds,
	{Group: router.GroupMonitor, Table: router.TableMonitorConditions}: router.TableMonitorConditions,
	{Group: router.GroupFacts, Table: router.TableMonitorFacts}:        router.TableMonitorFacts,
	{Group: router.GroupRules, Table: router.TableMonitorRules}:        router.TableMonitorRules,
	{Group: router.GroupRules, Table: router.TableRulesDefinitions}:    router.TableRulesDefinitions,
	{Group: router.GroupRules, Table: router.TableRulesActions}:        router.TableRulesActions,
	{Group: router.GroupRules, Table: router.TableActionExecutors}:     router.TableActionExecutors,
	{Group: router.GroupRules, Table: router.TableMonitorRulesLogs}:    router.TableMonitorRulesLogs,
	{Group: router.GroupActions, Table: router.TableActionExecutors}:   router.TableActionExecutors,
}

// primaryTables names each group's default table, used when routing produces
// a combination the registry does not know.
var primaryTables = map[router.Group]router.Table{
	router.GroupMonitor: router.TableMonitoredFeeds,
	router.GroupFacts:   router.TableMonitorFacts,
	router.GroupRules:   router.TableMonitorRules,
	router.GroupActions: router.TableActionExecutors,
}

// Registry resolves routed handler IDs to handlers.
type Registry struct {
	log *slog.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{log: log}
}

// Resolve maps a handler ID to its handler. An unknown combination is logged
// and served by the group's primary table (globally, monitored feeds) so a
// routing anomaly degrades to a broad answer instead of an error.
func (r *Registry) Resolve(id router.HandlerID) Handler {
	if id.Table == router.TableAnalytics {
		if ad, ok := synth.Analytics[id.Group]; ok {
			return Handler{Analytics: ad}
		}
		r.log.Error("no analytics descriptor for group, using default handler", "handler", id.String())
		return Handler{Table: synth.Tables[router.TableMonitoredFeeds]}
	}

	if tbl, ok := validTables[id]; ok {
		return Handler{Table: synth.Tables[tbl]}
	}

	r.log.Error("unknown handler combination, using default handler", "handler", id.String())
	if tbl, ok := primaryTables[id.Group]; ok {
		return Handler{Table: synth.Tables[tbl]}
	}
	return Handler{Table: synth.Tables[router.TableMonitoredFeeds]}
}
