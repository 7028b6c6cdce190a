package synth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/watchtowerhq/watchtower/pkg/router"
)

// KeywordRule maps query keywords to canned WHERE conditions. Rules are
// evaluated in order against the lowercased query; the first match wins.
type KeywordRule struct {
	Keywords    []string
	Conditions  []string
	Description string

	// Build, when set, derives conditions from the query text (extracted
	// IDs, thresholds, quoted names). It overrides Conditions/Description
	// and may decline the match by returning false.
	Build func(query string) ([]string, string, bool)
}

// TableDescriptor declares everything the generator needs to serve filtered
// fetches against one table: the base projection, the synthesis prompt
// material, the accepted condition prefixes, and the deterministic keyword
// fallback used when the model is unavailable or unparseable.
type TableDescriptor struct {
	Name               string
	BaseQuery          string
	OrderBy            string
	Limit              int
	AllowedPrefixes    []string
	Schema             string
	Examples           string
	Fallback           []KeywordRule
	DefaultDescription string
}

// AnalyticsRule maps query keywords to a canned analytics statement.
type AnalyticsRule struct {
	Keywords    []string
	SQL         string
	Description string
}

// AnalyticsDescriptor declares the full-statement synthesis context for one
// group: the multi-table schema shown to the model and the canned fallback
// statements.
type AnalyticsDescriptor struct {
	Group              router.Group
	Schema             string
	Examples           string
	Fallback           []AnalyticsRule
	DefaultSQL         string
	DefaultDescription string
}

var numberRe = regexp.MustCompile(`\d+`)

// firstNumber extracts the first integer literal from the query.
func firstNumber(query string) (string, bool) {
	n := numberRe.FindString(query)
	return n, n != ""
}

func quotedName(query string) (string, bool) {
	start := strings.Index(query, `"`)
	if start == -1 {
		return "", false
	}
	end := strings.Index(query[start+1:], `"`)
	if end == -1 {
		return "", false
	}
	return query[start+1 : start+1+end], true
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// FallbackFilter resolves WHERE conditions from keyword rules alone. It
// always succeeds; an empty condition list means an unfiltered fetch.
func (td *TableDescriptor) FallbackFilter(query string) ([]string, string) {
	lower := strings.ToLower(query)
	for _, rule := range td.Fallback {
		if !containsAny(lower, rule.Keywords) {
			continue
		}
		if rule.Build != nil {
			if conds, desc, ok := rule.Build(query); ok {
				return conds, desc
			}
			continue
		}
		return rule.Conditions, rule.Description
	}
	return nil, td.DefaultDescription
}

// FallbackSQL resolves a canned analytics statement from keyword rules.
func (ad *AnalyticsDescriptor) FallbackSQL(query string) (string, string) {
	lower := strings.ToLower(query)
	for _, rule := range ad.Fallback {
		if containsAny(lower, rule.Keywords) {
			return rule.SQL, rule.Description
		}
	}
	return ad.DefaultSQL, ad.DefaultDescription
}

// Assemble composes the final statement from the base projection, the
// condition list, and the fixed ordering and row cap.
func (td *TableDescriptor) Assemble(conditions []string) string {
	var b strings.Builder
	b.WriteString(td.BaseQuery)
	if len(conditions) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString("\n")
	b.WriteString(td.OrderBy)
	fmt.Fprintf(&b, "\nLIMIT %d", td.Limit)
	return b.String()
}

// Tables maps a routed table to its descriptor.
var Tables = map[router.Table]*TableDescriptor{
	router.TableMonitoredFeeds:    monitoredFeeds,
	router.TableMonitorConditions: monitorConditions,
	router.TableMonitorFacts:      monitoredFacts,
	router.TableMonitorRules:      monitorRules,
	router.TableRulesDefinitions:  rulesDefinitions,
	router.TableRulesActions:      ruleActions,
	router.TableActionExecutors:   actionExecutors,
	router.TableMonitorRulesLogs:  monitorRulesLogs,
}

// Analytics maps a group to its analytics descriptor.
var Analytics = map[router.Group]*AnalyticsDescriptor{
	router.GroupMonitor: monitorAnalytics,
	router.GroupFacts:   factsAnalytics,
	router.GroupRules:   rulesAnalytics,
	router.GroupActions: actionsAnalytics,
}

var monitoredFeeds = &TableDescriptor{
	Name: "monitored_feeds",
	BaseQuery: `SELECT
    monitor_id,
    monitor_system_name,
    monitor_description,
    measure_transaction,
    measure_field_path,
    is_enabled
FROM monitored_feeds`,
	OrderBy:         "ORDER BY monitor_id",
	Limit:           100,
	AllowedPrefixes: []string{"monitor_", "measure_", "is_enabled"},
	Schema: `- monitor_id: Unique monitor identifier
- monitor_system_name: Monitor name
- monitor_description: Human readable description
- measure_transaction: TRUE when the monitor sums transaction values, FALSE when it counts events
- measure_field_path: JSON path of the measured field
- is_enabled: Enabled status (TRUE/FALSE)`,
	Examples: `- "Show enabled monitors" -> {"where_conditions": ["is_enabled = 'TRUE'"], "query_description": "enabled monitors"}
- "Disabled monitors" -> {"where_conditions": ["is_enabled = 'FALSE'"], "query_description": "disabled monitors"}
- "Monitor 42" -> {"where_conditions": ["monitor_id = 42"], "query_description": "monitor with ID 42"}
- "Monitors named SAP" -> {"where_conditions": ["monitor_system_name ILIKE '%SAP%'"], "query_description": "monitors with name containing 'SAP'"}
- "All monitors" -> {"where_conditions": [], "query_description": "all monitors"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"enabled", "active", "running"}, Conditions: []string{"is_enabled = 'TRUE'"}, Description: "enabled monitors"},
		{Keywords: []string{"disabled", "inactive", "stopped"}, Conditions: []string{"is_enabled = 'FALSE'"}, Description: "disabled monitors"},
		{Keywords: []string{"transaction", "sum", "total", "addition"}, Conditions: []string{"measure_transaction = 'TRUE'"}, Description: "monitors for sum calculation"},
		{Keywords: []string{"count", "counting", "events", "occurrence"}, Conditions: []string{"measure_transaction = 'FALSE'"}, Description: "monitors for event counting"},
		{Keywords: []string{"monitor"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"monitor_id = " + id}, "monitor with ID " + id, true
		}},
		{Keywords: []string{"name", "called", "named"}, Build: func(query string) ([]string, string, bool) {
			name, ok := quotedName(query)
			if !ok {
				return nil, "", false
			}
			return []string{fmt.Sprintf("monitor_system_name ILIKE '%%%s%%'", name)},
				fmt.Sprintf("monitors with name containing '%s'", name), true
		}},
		{Keywords: []string{"description", "described", "about"}, Conditions: []string{"monitor_description IS NOT NULL AND monitor_description != ''"}, Description: "monitors with descriptions"},
	},
	DefaultDescription: "all monitors",
}

var monitorConditions = &TableDescriptor{
	Name: "monitor_conditions",
	BaseQuery: `SELECT
    c.condition_id,
    c.monitor_id,
    m.monitor_system_name as monitor_name,
    c.feed_path_name,
    c.condition_operator,
    c.comparator,
    c.group_operator
FROM monitor_conditions c
LEFT JOIN monitored_feeds m ON c.monitor_id = m.monitor_id`,
	OrderBy:         "ORDER BY c.condition_id",
	Limit:           100,
	AllowedPrefixes: []string{"c.", "m.", "DATE("},
	Schema: `- condition_id: Unique condition identifier
- monitor_id: Monitor identifier (links to monitored_feeds)
- feed_path_name: JSON path the condition inspects
- condition_operator: Comparison operator (EQ, NE, GT, LT, CONTAINS)
- comparator: Value compared against
- group_operator: AND/OR combination with sibling conditions

When filtering by monitor name, use m.monitor_system_name from the joined monitored_feeds table.`,
	Examples: `- "Conditions for monitor 5" -> {"where_conditions": ["c.monitor_id = 5"], "query_description": "conditions for monitor 5"}
- "Conditions for SAP monitor" -> {"where_conditions": ["m.monitor_system_name ILIKE '%SAP%'"], "query_description": "conditions for SAP monitors"}
- "All filter conditions" -> {"where_conditions": [], "query_description": "all monitor conditions"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"monitor"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"c.monitor_id = " + id}, "conditions for monitor " + id, true
		}},
		{Keywords: []string{"name", "called", "named"}, Build: func(query string) ([]string, string, bool) {
			name, ok := quotedName(query)
			if !ok {
				return nil, "", false
			}
			return []string{fmt.Sprintf("m.monitor_system_name ILIKE '%%%s%%'", name)},
				fmt.Sprintf("conditions for monitors named '%s'", name), true
		}},
	},
	DefaultDescription: "all monitor conditions",
}

var monitoredFacts = &TableDescriptor{
	Name: "monitored_facts",
	BaseQuery: `SELECT
    f.fact_id,
    f.monitor_id,
    m.monitor_system_name as monitor_name,
    f.start_time,
    f.end_time,
    f.cummulative_measure,
    f.samples
FROM monitored_facts f
LEFT JOIN monitored_feeds m ON f.monitor_id = m.monitor_id`,
	OrderBy:         "ORDER BY f.start_time DESC",
	Limit:           100,
	AllowedPrefixes: []string{"f.", "m.", "DATE("},
	Schema: `- fact_id: Unique fact identifier
- monitor_id: Monitor identifier (links to monitored_feeds)
- start_time: Measurement window start
- end_time: Measurement window end
- cummulative_measure: Accumulated measure over the window
- samples: Number of samples in the window

When filtering by monitor name, use m.monitor_system_name from the joined monitored_feeds table.`,
	Examples: `- "Events from the last week" -> {"where_conditions": ["f.start_time >= NOW() - INTERVAL '7 days'"], "query_description": "performance data from last week"}
- "Today's events" -> {"where_conditions": ["DATE(f.start_time) = CURRENT_DATE"], "query_description": "today's performance data"}
- "Measure above 1000" -> {"where_conditions": ["f.cummulative_measure > 1000"], "query_description": "monitors with cumulative measure above 1000"}
- "Events for monitor 7" -> {"where_conditions": ["f.monitor_id = 7"], "query_description": "performance data for monitor 7"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"hour"}, Build: func(query string) ([]string, string, bool) {
			lower := strings.ToLower(query)
			if strings.Contains(lower, "24") || strings.Contains(lower, "day") {
				return []string{"f.start_time >= NOW() - INTERVAL '24 hours'"}, "performance data from last 24 hours", true
			}
			return []string{"f.start_time >= NOW() - INTERVAL '1 hour'"}, "performance data from last hour", true
		}},
		{Keywords: []string{"week", "recent", "latest", "last"}, Conditions: []string{"f.start_time >= NOW() - INTERVAL '7 days'"}, Description: "recent performance data"},
		{Keywords: []string{"month"}, Conditions: []string{"f.start_time >= NOW() - INTERVAL '30 days'"}, Description: "performance data from last month"},
		{Keywords: []string{"today"}, Conditions: []string{"DATE(f.start_time) = CURRENT_DATE"}, Description: "today's performance data"},
		{Keywords: []string{"yesterday"}, Conditions: []string{"DATE(f.start_time) = CURRENT_DATE - INTERVAL '1 day'"}, Description: "yesterday's performance data"},
		{Keywords: []string{"high", "above", "more than"}, Build: func(query string) ([]string, string, bool) {
			threshold, ok := firstNumber(query)
			if !ok {
				threshold = "1000"
			}
			if strings.Contains(strings.ToLower(query), "sample") {
				return []string{"f.samples::numeric > " + threshold},
					fmt.Sprintf("monitors with more than %s samples", threshold), true
			}
			return []string{"f.cummulative_measure > " + threshold},
				fmt.Sprintf("monitors with cumulative measure above %s", threshold), true
		}},
		{Keywords: []string{"monitor"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"f.monitor_id = " + id}, "performance data for monitor " + id, true
		}},
	},
	DefaultDescription: "performance data",
}

var monitorRules = &TableDescriptor{
	Name: "monitor_rules",
	BaseQuery: `SELECT
    r.rule_id,
    r.monitor_id,
    m.monitor_system_name as monitor_name,
    r.rule_name,
    r.is_violated,
    r.execute_on,
    r.is_active,
    r.do_remind,
    r.interval_mins,
    r.use_calandar as use_calendar,
    r.calandar_name as calendar_name,
    r.is_enabled
FROM monitor_rules r
LEFT JOIN monitored_feeds m ON r.monitor_id = m.monitor_id`,
	OrderBy:         "ORDER BY r.rule_id",
	Limit:           100,
	AllowedPrefixes: []string{"r.", "m.", "DATE("},
	Schema: `- rule_id: Unique rule identifier
- monitor_id: Monitor identifier (links to monitored_feeds)
- rule_name: Rule name
- is_violated: Current violation status (TRUE/FALSE)
- execute_on: Execution time
- is_active: Active status (TRUE/FALSE)
- do_remind: Reminder status (TRUE/FALSE)
- interval_mins: Reminder interval in minutes
- use_calendar: Calendar usage flag (TRUE/FALSE)
- calendar_name: Calendar name associated with the rule
- is_enabled: Enabled status (TRUE/FALSE)

When filtering by monitor name, use m.monitor_system_name from the joined monitored_feeds table, NOT r.rule_name.`,
	Examples: `- "Show me violated rules" -> {"where_conditions": ["r.is_violated = 'TRUE'"], "query_description": "violated rules"}
- "Get all active rules" -> {"where_conditions": ["r.is_active = 'TRUE'"], "query_description": "active rules"}
- "Find rules for monitor 123" -> {"where_conditions": ["r.monitor_id = 123"], "query_description": "rules for monitor 123"}
- "Show rules with reminders enabled" -> {"where_conditions": ["r.do_remind = 'TRUE'"], "query_description": "rules with reminders enabled"}
- "Get enabled rules that are not violated" -> {"where_conditions": ["r.is_enabled = 'TRUE'", "r.is_violated = 'FALSE'"], "query_description": "enabled non-violated rules"}
- "Find rules for SAP monitor" -> {"where_conditions": ["m.monitor_system_name LIKE '%SAP%'"], "query_description": "rules for SAP monitor"}
- "Get rules with 15 minute intervals" -> {"where_conditions": ["r.interval_mins = 15"], "query_description": "rules with 15 minute intervals"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"violated", "violation", "problem", "alert", "issue", "broken", "failed"}, Conditions: []string{"r.is_violated = 'TRUE'"}, Description: "violated rules"},
		{Keywords: []string{"active", "running", "enabled"}, Conditions: []string{"r.is_active = 'TRUE'"}, Description: "active rules"},
		{Keywords: []string{"inactive", "disabled", "stopped"}, Conditions: []string{"r.is_active = 'FALSE'"}, Description: "inactive rules"},
		{Keywords: []string{"remind", "reminder", "notification"}, Conditions: []string{"r.do_remind = 'TRUE'"}, Description: "rules with reminders enabled"},
		{Keywords: []string{"monitor"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"r.monitor_id = " + id}, "rules for monitor " + id, true
		}},
		{Keywords: []string{"all", "every", "total", "complete", "entire"}, Description: "all rules"},
	},
	DefaultDescription: "all rules",
}

var rulesDefinitions = &TableDescriptor{
	Name: "rules_definitions",
	BaseQuery: `SELECT
    d.definition_id,
    d.rule_id,
    r.rule_name,
    d.evaluator_id,
    d.evaluation_query,
    d.use_query,
    d.evaluated_measure,
    d.evaluation_operator,
    d.definition_operator,
    d.definition_name
FROM rules_definitions d
LEFT JOIN monitor_rules r ON d.rule_id = r.rule_id`,
	OrderBy:         "ORDER BY d.definition_id",
	Limit:           100,
	AllowedPrefixes: []string{"d.", "r.", "DATE("},
	Schema: `- definition_id: Unique definition identifier
- rule_id: Rule identifier (links to monitor_rules)
- evaluator_id: Evaluator that runs the definition
- evaluation_query: SQL used to evaluate the rule
- use_query: Whether the SQL query is used (TRUE/FALSE)
- evaluated_measure: Measure the evaluation compares
- evaluation_operator: Comparison operator for the measure
- definition_operator: AND/OR combination with sibling definitions
- definition_name: Definition name

When filtering by rule name, use r.rule_name from the joined monitor_rules table.`,
	Examples: `- "Definition for rule 12" -> {"where_conditions": ["d.rule_id = 12"], "query_description": "definition for rule 12"}
- "Rule logic for \"CPU High\"" -> {"where_conditions": ["r.rule_name ILIKE '%CPU High%'"], "query_description": "rule logic for 'CPU High'"}
- "All rule definitions" -> {"where_conditions": [], "query_description": "all rule definitions"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"rule"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"d.rule_id = " + id}, "definition for rule " + id, true
		}},
		{Keywords: []string{"rule logic", "rule for"}, Build: func(query string) ([]string, string, bool) {
			name, ok := quotedName(query)
			if !ok {
				return nil, "", false
			}
			return []string{fmt.Sprintf("r.rule_name ILIKE '%%%s%%'", name)},
				fmt.Sprintf("rule logic for '%s'", name), true
		}},
	},
	DefaultDescription: "all rule definitions",
}

var ruleActions = &TableDescriptor{
	Name: "rule_actions",
	BaseQuery: `SELECT
    a.action_id,
    a.rules_id,
    r.rule_name,
    a.executor_id,
    e.executor_name,
    a.is_active,
    a.created_at
FROM rule_actions a
LEFT JOIN monitor_rules r ON a.rules_id = r.rule_id
LEFT JOIN action_executors e ON a.executor_id = e.executor_id`,
	OrderBy:         "ORDER BY a.action_id",
	Limit:           100,
	AllowedPrefixes: []string{"a.", "r.", "e.", "DATE("},
	Schema: `- action_id: Unique action identifier
- rules_id: Rule identifier (links to monitor_rules.rule_id)
- executor_id: Executor identifier (links to action_executors)
- is_active: Active status (TRUE/FALSE)
- created_at: Creation timestamp

Filter action types through e.executor_name (SEND_EMAIL, SLACK_MESSAGE, SMS_MESSAGE, PAGERDUTY_TICKET, OPSGENIE_ALERTS). Filter rule names through r.rule_name.`,
	Examples: `- "Actions for rule 3" -> {"where_conditions": ["a.rules_id = 3"], "query_description": "actions for rule 3"}
- "Email actions" -> {"where_conditions": ["e.executor_name = 'SEND_EMAIL'"], "query_description": "email notification actions"}
- "Active rule actions" -> {"where_conditions": ["a.is_active = 'TRUE'"], "query_description": "active rule actions"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"rule"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"a.rules_id = " + id}, "actions for rule " + id, true
		}},
		{Keywords: []string{"email"}, Conditions: []string{"e.executor_name = 'SEND_EMAIL'"}, Description: "email notification actions"},
		{Keywords: []string{"slack"}, Conditions: []string{"e.executor_name = 'SLACK_MESSAGE'"}, Description: "SLACK notification actions"},
		{Keywords: []string{"sms"}, Conditions: []string{"e.executor_name = 'SMS_MESSAGE'"}, Description: "SMS notification actions"},
		{Keywords: []string{"pagerduty"}, Conditions: []string{"e.executor_name = 'PAGERDUTY_TICKET'"}, Description: "PagerDuty notification actions"},
		{Keywords: []string{"opsgenie"}, Conditions: []string{"e.executor_name = 'OPSGENIE_ALERTS'"}, Description: "OpsGenie notification actions"},
		{Keywords: []string{"active", "enabled"}, Conditions: []string{"a.is_active = 'TRUE'"}, Description: "active rule actions"},
		{Keywords: []string{"inactive", "disabled"}, Conditions: []string{"a.is_active = 'FALSE'"}, Description: "inactive rule actions"},
		{Keywords: []string{"today", "current"}, Conditions: []string{"DATE(a.created_at) = CURRENT_DATE"}, Description: "rule actions created today"},
		{Keywords: []string{"week"}, Conditions: []string{"a.created_at >= NOW() - INTERVAL '7 days'"}, Description: "rule actions created in last week"},
	},
	DefaultDescription: "all rule actions",
}

var actionExecutors = &TableDescriptor{
	Name: "action_executors",
	BaseQuery: `SELECT
    e.executor_id,
    e.executor_name
FROM action_executors e`,
	OrderBy:         "ORDER BY e.executor_id",
	Limit:           100,
	AllowedPrefixes: []string{"e."},
	Schema: `- executor_id: Unique executor identifier
- executor_name: Executor name (SEND_EMAIL, SLACK_MESSAGE, SMS_MESSAGE, PAGERDUTY_TICKET, OPSGENIE_ALERTS)`,
	Examples: `- "Email executors" -> {"where_conditions": ["e.executor_name ILIKE '%EMAIL%'"], "query_description": "email action executors"}
- "All available actions" -> {"where_conditions": [], "query_description": "all action executors"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"email"}, Conditions: []string{"e.executor_name ILIKE '%EMAIL%'"}, Description: "email action executors"},
		{Keywords: []string{"slack"}, Conditions: []string{"e.executor_name ILIKE '%SLACK%'"}, Description: "SLACK action executors"},
		{Keywords: []string{"sms"}, Conditions: []string{"e.executor_name ILIKE '%SMS%'"}, Description: "SMS action executors"},
		{Keywords: []string{"pagerduty"}, Conditions: []string{"e.executor_name ILIKE '%PAGERDUTY%'"}, Description: "PagerDuty action executors"},
		{Keywords: []string{"opsgenie"}, Conditions: []string{"e.executor_name ILIKE '%OPSGENIE%'"}, Description: "OpsGenie action executors"},
		{Keywords: []string{"webhook"}, Conditions: []string{"e.executor_name ILIKE '%WEBHOOK%'"}, Description: "webhook action executors"},
	},
	DefaultDescription: "all action executors",
}

var monitorRulesLogs = &TableDescriptor{
	Name: "monitor_rules_logs",
	BaseQuery: `SELECT
    l.log_id,
    l.log_timestamp,
    l.rule_id,
    r.rule_name,
    l.audit_type,
    l.log_comment,
    l.priority,
    l.channel,
    l.receiver,
    l.description,
    l.status,
    l.alert_type,
    l.app_incident_id
FROM monitor_rules_logs l
LEFT JOIN monitor_rules r ON l.rule_id = r.rule_id`,
	OrderBy:         "ORDER BY l.log_timestamp DESC",
	Limit:           100,
	AllowedPrefixes: []string{"l.", "r.", "DATE("},
	Schema: `- log_id: Unique log identifier
- log_timestamp: Event timestamp
- rule_id: Rule identifier (links to monitor_rules)
- audit_type: Event type (VIOLATION, NOTIFICATION, AUDIT)
- log_comment: Event classification (VIOLATED, AUDIT, ROLLBACK)
- priority: Event priority (LOW, MEDIUM, HIGH, CRITICAL)
- channel: Notification channel (EMAIL, SLACK, SMS, PAGERDUTY, OPSGENIE)
- receiver: Notification receiver
- description: Event description
- status: Delivery status
- alert_type: Alert type
- app_incident_id: External incident reference

When filtering by rule name, use r.rule_name from the joined monitor_rules table.`,
	Examples: `- "Violations from last week" -> {"where_conditions": ["l.log_comment = 'VIOLATED'", "l.log_timestamp >= NOW() - INTERVAL '7 days'"], "query_description": "violated events from last week"}
- "EMAIL alerts" -> {"where_conditions": ["l.channel = 'EMAIL'"], "query_description": "email alerts"}
- "High priority logs" -> {"where_conditions": ["l.priority IN ('HIGH', 'CRITICAL')"], "query_description": "high priority logs"}
- "Logs for rule 9" -> {"where_conditions": ["l.rule_id = 9"], "query_description": "logs for rule 9"}`,
	Fallback: []KeywordRule{
		{Keywords: []string{"violated", "violation"}, Conditions: []string{"l.log_comment = 'VIOLATED'"}, Description: "violated events"},
		{Keywords: []string{"audit", "ok"}, Conditions: []string{"l.log_comment = 'AUDIT'"}, Description: "audit logs"},
		{Keywords: []string{"rollback", "fixed"}, Conditions: []string{"l.log_comment = 'ROLLBACK'"}, Description: "rollback events"},
		{Keywords: []string{"email"}, Conditions: []string{"l.channel = 'EMAIL'"}, Description: "email alerts"},
		{Keywords: []string{"slack"}, Conditions: []string{"l.channel = 'SLACK'"}, Description: "slack alerts"},
		{Keywords: []string{"sms"}, Conditions: []string{"l.channel = 'SMS'"}, Description: "SMS alerts"},
		{Keywords: []string{"pagerduty"}, Conditions: []string{"l.channel = 'PAGERDUTY'"}, Description: "PagerDuty alerts"},
		{Keywords: []string{"opsgenie"}, Conditions: []string{"l.channel = 'OPSGENIE'"}, Description: "OpsGenie alerts"},
		{Keywords: []string{"high priority", "critical"}, Conditions: []string{"l.priority IN ('HIGH', 'CRITICAL')"}, Description: "high priority logs"},
		{Keywords: []string{"low priority"}, Conditions: []string{"l.priority = 'LOW'"}, Description: "low priority logs"},
		{Keywords: []string{"rule"}, Build: func(query string) ([]string, string, bool) {
			id, ok := firstNumber(query)
			if !ok {
				return nil, "", false
			}
			return []string{"l.rule_id = " + id}, "logs for rule " + id, true
		}},
		{Keywords: []string{"recent", "latest", "last"}, Conditions: []string{"l.log_timestamp >= NOW() - INTERVAL '7 days'"}, Description: "recent logs"},
		{Keywords: []string{"month"}, Conditions: []string{"l.log_timestamp >= NOW() - INTERVAL '30 days'"}, Description: "logs from last month"},
		{Keywords: []string{"today"}, Conditions: []string{"DATE(l.log_timestamp) = CURRENT_DATE"}, Description: "today's logs"},
		{Keywords: []string{"yesterday"}, Conditions: []string{"DATE(l.log_timestamp) = CURRENT_DATE - 1"}, Description: "yesterday's logs"},
	},
	DefaultDescription: "logs",
}

var monitorAnalytics = &AnalyticsDescriptor{
	Group: router.GroupMonitor,
	Schema: `1. monitored_feeds (m) - Monitor information
   - monitor_id, monitor_system_name, monitor_description, measure_transaction, is_enabled
2. monitor_conditions (c) - Monitor filter conditions
   - condition_id, monitor_id, feed_path_name, condition_operator, comparator, group_operator
3. monitor_rules (r) - Rules attached to monitors
   - rule_id, monitor_id, rule_name, is_violated, is_active, is_enabled`,
	Examples: `- "Which monitor has the most conditions?" -> {"sql_query": "SELECT m.monitor_system_name, COUNT(c.condition_id) as total_conditions FROM monitored_feeds m LEFT JOIN monitor_conditions c ON m.monitor_id = c.monitor_id GROUP BY m.monitor_id, m.monitor_system_name ORDER BY total_conditions DESC LIMIT 10", "query_description": "monitors ranked by condition count"}
- "Which monitor has the most rules?" -> {"sql_query": "SELECT m.monitor_system_name, COUNT(r.rule_id) as rule_count FROM monitored_feeds m LEFT JOIN monitor_rules r ON m.monitor_id = r.monitor_id GROUP BY m.monitor_id, m.monitor_system_name ORDER BY rule_count DESC LIMIT 10", "query_description": "monitors ranked by rule count"}`,
	Fallback: []AnalyticsRule{
		{
			Keywords: []string{"most rules", "rules per monitor"},
			SQL: `SELECT m.monitor_system_name, COUNT(r.rule_id) as rule_count
FROM monitored_feeds m
LEFT JOIN monitor_rules r ON m.monitor_id = r.monitor_id
GROUP BY m.monitor_id, m.monitor_system_name
ORDER BY rule_count DESC
LIMIT 10`,
			Description: "monitors ranked by rule count",
		},
		{
			Keywords: []string{"condition"},
			SQL: `SELECT m.monitor_system_name, COUNT(c.condition_id) as total_conditions
FROM monitored_feeds m
LEFT JOIN monitor_conditions c ON m.monitor_id = c.monitor_id
GROUP BY m.monitor_id, m.monitor_system_name
ORDER BY total_conditions DESC
LIMIT 10`,
			Description: "monitors ranked by condition count",
		},
	},
	DefaultSQL: `SELECT m.monitor_system_name, m.is_enabled,
       COUNT(c.condition_id) as condition_count,
       COUNT(r.rule_id) as rule_count
FROM monitored_feeds m
LEFT JOIN monitor_conditions c ON m.monitor_id = c.monitor_id
LEFT JOIN monitor_rules r ON m.monitor_id = r.monitor_id
GROUP BY m.monitor_id, m.monitor_system_name, m.is_enabled
ORDER BY rule_count DESC
LIMIT 100`,
	DefaultDescription: "monitor overview with condition and rule counts",
}

var factsAnalytics = &AnalyticsDescriptor{
	Group: router.GroupFacts,
	Schema: `1. monitored_facts (mf) - Measured events per monitor window
   - fact_id, monitor_id, start_time, end_time, cummulative_measure, samples
2. monitored_feeds (m) - Monitor information
   - monitor_id, monitor_system_name, is_enabled`,
	Examples: `- "Which monitor has the most events?" -> {"sql_query": "SELECT m.monitor_system_name, COUNT(mf.fact_id) as event_count FROM monitored_feeds m LEFT JOIN monitored_facts mf ON m.monitor_id = mf.monitor_id GROUP BY m.monitor_id, m.monitor_system_name ORDER BY event_count DESC LIMIT 10", "query_description": "monitors ranked by event count"}
- "Event trends over time" -> {"sql_query": "SELECT DATE(mf.start_time) as event_date, AVG(mf.cummulative_measure) as avg_measure, COUNT(*) as event_count FROM monitored_facts mf GROUP BY DATE(mf.start_time) ORDER BY event_date DESC LIMIT 30", "query_description": "daily event trends"}`,
	Fallback: []AnalyticsRule{
		{
			Keywords: []string{"most events", "most facts"},
			SQL: `SELECT m.monitor_system_name, COUNT(mf.fact_id) as event_count
FROM monitored_feeds m
LEFT JOIN monitored_facts mf ON m.monitor_id = mf.monitor_id
GROUP BY m.monitor_id, m.monitor_system_name
ORDER BY event_count DESC
LIMIT 10`,
			Description: "monitors ranked by event count",
		},
		{
			Keywords: []string{"average", "avg"},
			SQL: `SELECT AVG(event_count) as avg_events
FROM (
    SELECT m.monitor_id, COUNT(mf.fact_id) as event_count
    FROM monitored_feeds m
    LEFT JOIN monitored_facts mf ON m.monitor_id = mf.monitor_id
    GROUP BY m.monitor_id
) as monitor_event_counts`,
			Description: "average events per monitor",
		},
		{
			Keywords: []string{"trends", "time"},
			SQL: `SELECT DATE(mf.start_time) as event_date,
       AVG(mf.cummulative_measure) as avg_measure,
       COUNT(*) as event_count
FROM monitored_facts mf
GROUP BY DATE(mf.start_time)
ORDER BY event_date DESC
LIMIT 30`,
			Description: "daily event trends",
		},
	},
	DefaultSQL: `SELECT m.monitor_system_name,
       mf.start_time,
       mf.end_time,
       mf.cummulative_measure,
       mf.samples
FROM monitored_facts mf
LEFT JOIN monitored_feeds m ON mf.monitor_id = m.monitor_id
ORDER BY mf.start_time DESC
LIMIT 100`,
	DefaultDescription: "recent measured events",
}

var rulesAnalytics = &AnalyticsDescriptor{
	Group: router.GroupRules,
	Schema: `1. monitor_rules (r) - Rule definitions and status
   - rule_id, rule_name, monitor_id, is_violated, is_active, is_enabled, created_at
2. rules_definitions (rd) - Rule evaluation logic and SQL
   - definition_id, rule_id, evaluator_id, evaluation_query, use_query, evaluated_measure, evaluation_operator, definition_operator, definition_name
3. rule_actions (ra) - Actions configured for rules
   - action_id, rules_id, executor_id, is_active
4. monitor_rules_logs (mrl) - Rule violation history and logs
   - log_id, rule_id, log_timestamp, audit_type, priority, channel, status
5. monitored_feeds (mf) - Monitor information
   - monitor_id, monitor_system_name, is_enabled`,
	Examples: `- "Which rules are violated most?" -> {"sql_query": "SELECT r.rule_name, COUNT(mrl.log_id) as violation_count FROM monitor_rules r LEFT JOIN monitor_rules_logs mrl ON r.rule_id = mrl.rule_id WHERE mrl.audit_type = 'VIOLATION' GROUP BY r.rule_id, r.rule_name ORDER BY violation_count DESC LIMIT 10", "query_description": "rules ranked by violation frequency"}
- "Violation trends over time" -> {"sql_query": "SELECT DATE(mrl.log_timestamp) as violation_date, COUNT(*) as violation_count FROM monitor_rules_logs mrl WHERE mrl.audit_type = 'VIOLATION' GROUP BY DATE(mrl.log_timestamp) ORDER BY violation_date DESC LIMIT 30", "query_description": "daily violation trends over last 30 days"}
- "Channel notification statistics" -> {"sql_query": "SELECT mrl.channel, COUNT(*) as notification_count, AVG(CASE WHEN mrl.status = 'SENT' THEN 1 ELSE 0 END) as success_rate FROM monitor_rules_logs mrl WHERE mrl.audit_type = 'NOTIFICATION' GROUP BY mrl.channel ORDER BY notification_count DESC", "query_description": "notification statistics by channel"}
- "Plot me a chart for Channel EMAIL for last 100 days" -> {"sql_query": "SELECT DATE(mrl.log_timestamp) as notification_date, COUNT(*) as email_count FROM monitor_rules_logs mrl WHERE mrl.channel = 'EMAIL' AND mrl.log_timestamp >= NOW() - INTERVAL '100 days' GROUP BY DATE(mrl.log_timestamp) ORDER BY notification_date", "query_description": "daily EMAIL notifications over last 100 days"}`,
	Fallback: []AnalyticsRule{
		{
			Keywords: []string{"100 days"},
			SQL: `SELECT DATE(mrl.log_timestamp) as notification_date,
       COUNT(*) as email_count
FROM monitor_rules_logs mrl
WHERE mrl.channel = 'EMAIL'
AND mrl.log_timestamp >= NOW() - INTERVAL '100 days'
GROUP BY DATE(mrl.log_timestamp)
ORDER BY notification_date`,
			Description: "daily EMAIL notifications over last 100 days",
		},
		{
			Keywords: []string{"email"},
			SQL: `SELECT DATE(mrl.log_timestamp) as notification_date,
       COUNT(*) as email_count
FROM monitor_rules_logs mrl
WHERE mrl.channel = 'EMAIL'
GROUP BY DATE(mrl.log_timestamp)
ORDER BY notification_date DESC
LIMIT 30`,
			Description: "daily EMAIL notifications over time",
		},
		{
			Keywords: []string{"most violated", "violated most"},
			SQL: `SELECT r.rule_name,
       COUNT(mrl.log_id) as violation_count
FROM monitor_rules r
LEFT JOIN monitor_rules_logs mrl ON r.rule_id = mrl.rule_id
WHERE mrl.audit_type = 'VIOLATION'
GROUP BY r.rule_id, r.rule_name
ORDER BY violation_count DESC
LIMIT 10`,
			Description: "rules ranked by violation frequency",
		},
		{
			Keywords: []string{"trends", "over time"},
			SQL: `SELECT DATE(mrl.log_timestamp) as violation_date,
       COUNT(*) as violation_count
FROM monitor_rules_logs mrl
WHERE mrl.audit_type = 'VIOLATION'
GROUP BY DATE(mrl.log_timestamp)
ORDER BY violation_date DESC
LIMIT 30`,
			Description: "daily violation trends over last 30 days",
		},
		{
			Keywords: []string{"statistics"},
			SQL: `SELECT mrl.channel,
       COUNT(*) as notification_count,
       AVG(CASE WHEN mrl.status = 'SENT' THEN 1 ELSE 0 END) as success_rate
FROM monitor_rules_logs mrl
WHERE mrl.audit_type = 'NOTIFICATION'
GROUP BY mrl.channel
ORDER BY notification_count DESC`,
			Description: "notification statistics by channel",
		},
	},
	DefaultSQL: `SELECT r.rule_name,
       r.is_violated,
       COUNT(mrl.log_id) as total_logs,
       COUNT(CASE WHEN mrl.audit_type = 'VIOLATION' THEN 1 END) as violation_count,
       COUNT(CASE WHEN mrl.audit_type = 'NOTIFICATION' THEN 1 END) as notification_count
FROM monitor_rules r
LEFT JOIN monitor_rules_logs mrl ON r.rule_id = mrl.rule_id
GROUP BY r.rule_id, r.rule_name, r.is_violated
ORDER BY violation_count DESC`,
	DefaultDescription: "comprehensive rules analytics with violation and notification counts",
}

var actionsAnalytics = &AnalyticsDescriptor{
	Group: router.GroupActions,
	Schema: `1. action_executors (ae) - Available action types
   - executor_id, executor_name
2. rule_actions (ra) - Actions configured for rules
   - action_id, rules_id, executor_id, is_active
3. monitor_rules (r) - Rule definitions
   - rule_id, rule_name`,
	Examples: `- "Most used actions" -> {"sql_query": "SELECT ae.executor_name, COUNT(ra.action_id) as usage_count FROM action_executors ae LEFT JOIN rule_actions ra ON ae.executor_id = ra.executor_id WHERE ra.is_active = 'TRUE' GROUP BY ae.executor_id, ae.executor_name ORDER BY usage_count DESC LIMIT 10", "query_description": "action executors ranked by usage"}`,
	Fallback: []AnalyticsRule{
		{
			Keywords: []string{"most used", "usage"},
			SQL: `SELECT ae.executor_name, COUNT(ra.action_id) as usage_count
FROM action_executors ae
LEFT JOIN rule_actions ra ON ae.executor_id = ra.executor_id
WHERE ra.is_active = 'TRUE'
GROUP BY ae.executor_id, ae.executor_name
ORDER BY usage_count DESC
LIMIT 10`,
			Description: "action executors ranked by usage",
		},
		{
			Keywords: []string{"by rule", "rule type"},
			SQL: `SELECT r.rule_name, ae.executor_name, COUNT(ra.action_id) as action_count
FROM monitor_rules r
LEFT JOIN rule_actions ra ON r.rule_id = ra.rules_id
LEFT JOIN action_executors ae ON ra.executor_id = ae.executor_id
GROUP BY r.rule_id, r.rule_name, ae.executor_id, ae.executor_name
ORDER BY action_count DESC`,
			Description: "actions grouped by rule and executor",
		},
		{
			Keywords: []string{"statistics", "stats"},
			SQL: `SELECT ae.executor_name,
       SUM(CASE WHEN ra.is_active = 'TRUE' THEN 1 ELSE 0 END) as active_actions,
       COUNT(ra.action_id) as total_actions
FROM action_executors ae
LEFT JOIN rule_actions ra ON ae.executor_id = ra.executor_id
GROUP BY ae.executor_id, ae.executor_name
ORDER BY total_actions DESC`,
			Description: "action statistics by executor",
		},
	},
	DefaultSQL: `SELECT ae.executor_name,
       COUNT(ra.action_id) as total_actions,
       SUM(CASE WHEN ra.is_active = 'TRUE' THEN 1 ELSE 0 END) as active_actions
FROM action_executors ae
LEFT JOIN rule_actions ra ON ae.executor_id = ra.executor_id
GROUP BY ae.executor_id, ae.executor_name
ORDER BY total_actions DESC
LIMIT 100`,
	DefaultDescription: "action usage summary",
}
