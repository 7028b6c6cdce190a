package synth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchtowerhq/watchtower/pkg/llm"
	"github.com/watchtowerhq/watchtower/pkg/router"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestFiltered_ModelConditions(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"where_conditions": ["r.is_violated = 'TRUE'"], "query_description": "violated rules"}`}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "show me violated rules")
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Equal(t, "violated rules", res.Description)
	assert.Contains(t, res.SQL, "FROM monitor_rules r")
	assert.Contains(t, res.SQL, "WHERE r.is_violated = 'TRUE'")
	assert.Contains(t, res.SQL, "ORDER BY r.rule_id")
	assert.Contains(t, res.SQL, "LIMIT 100")
	assert.Contains(t, fake.prompt, "show me violated rules")
	assert.Contains(t, fake.prompt, "monitor_rules")
}

func TestFiltered_DropsUnknownPrefixes(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"where_conditions": ["r.is_active = 'TRUE'", "DROP TABLE monitor_rules"], "query_description": "active rules"}`}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "active rules")
	require.NoError(t, err)

	assert.Contains(t, res.SQL, "WHERE r.is_active = 'TRUE'\n")
	assert.NotContains(t, res.SQL, "DROP TABLE")
}

func TestFiltered_NoConditionsMeansUnfiltered(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"where_conditions": [], "query_description": "all rules"}`}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "show all rules")
	require.NoError(t, err)

	assert.NotContains(t, res.SQL, "WHERE")
	assert.Contains(t, res.SQL, "ORDER BY r.rule_id")
}

func TestFiltered_RepairsTruncatedJSON(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"where_conditions": ["r.do_remind = 'TRUE'"], "query_description": "rules with reminders enabled"`}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "rules with reminders")
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Contains(t, res.SQL, "WHERE r.do_remind = 'TRUE'")
	assert.Equal(t, "rules with reminders enabled", res.Description)
}

func TestFiltered_ScrapesMangledJSON(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"where_conditions": ["r.is_violated = 'TRUE'", bad], "query_description": "violated rules", trailing garbage}`}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "violated rules")
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Contains(t, res.SQL, "WHERE r.is_violated = 'TRUE'")
	assert.Equal(t, "violated rules", res.Description)
}

func TestFiltered_FallbackOnModelError(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{err: fmt.Errorf("dial tcp: %w", llm.ErrConnectivity)}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "show violated rules")
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Equal(t, "violated rules", res.Description)
	assert.Contains(t, res.SQL, "WHERE r.is_violated = 'TRUE'")
}

func TestFiltered_FallbackOnNonJSONResponse(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: "I am unable to produce SQL for that."}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRulesLogs], "EMAIL alerts from last week")
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Equal(t, "email alerts", res.Description)
	assert.Contains(t, res.SQL, "WHERE l.channel = 'EMAIL'")
}

func TestFiltered_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeLLM{err: ctx.Err()}
	g := NewGenerator(fake, nil)

	_, err := g.Filtered(ctx, Tables[router.TableMonitorRules], "violated rules")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalytics_ModelStatement(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"sql_query": "SELECT r.rule_name, COUNT(*) FROM monitor_rules r GROUP BY r.rule_name", "query_description": "rule counts"}`}
	g := NewGenerator(fake, nil)

	res, err := g.Analytics(context.Background(), Analytics[router.GroupRules], "count rules by name")
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Equal(t, "rule counts", res.Description)
	assert.Contains(t, res.SQL, "GROUP BY r.rule_name")
}

func TestAnalytics_MultilineStatement(t *testing.T) {
	t.Parallel()

	// Models routinely format the statement across lines inside the JSON
	// string; the repaired object must still parse and the statement execute.
	fake := &fakeLLM{response: "{\"sql_query\": \"SELECT r.rule_name, COUNT(*) AS c\nFROM monitor_rules r\nGROUP BY r.rule_name\nORDER BY c DESC\", \"query_description\": \"rule counts by name\"}"}
	g := NewGenerator(fake, nil)

	res, err := g.Analytics(context.Background(), Analytics[router.GroupRules], "count rules by name")
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Equal(t, "rule counts by name", res.Description)
	assert.Contains(t, res.SQL, "FROM monitor_rules r GROUP BY r.rule_name")
}

func TestFiltered_MultilineConditions(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: "{\"where_conditions\": [\"r.is_violated =\n'TRUE'\"],\n\"query_description\": \"violated rules\"}"}
	g := NewGenerator(fake, nil)

	res, err := g.Filtered(context.Background(), Tables[router.TableMonitorRules], "violated rules")
	require.NoError(t, err)

	assert.False(t, res.UsedFallback)
	assert.Contains(t, res.SQL, "r.is_violated = 'TRUE'")
}

func TestAnalytics_FallbackCannedSQL(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{err: fmt.Errorf("dial tcp: %w", llm.ErrConnectivity)}
	g := NewGenerator(fake, nil)

	res, err := g.Analytics(context.Background(), Analytics[router.GroupActions], "most used actions")
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Equal(t, "action executors ranked by usage", res.Description)
	assert.Contains(t, res.SQL, "FROM action_executors ae")
	assert.Contains(t, res.SQL, "ORDER BY usage_count DESC")
}

func TestAnalytics_FallbackDefault(t *testing.T) {
	t.Parallel()

	fake := &fakeLLM{response: `{"sql_query": "", "query_description": ""}`}
	g := NewGenerator(fake, nil)

	res, err := g.Analytics(context.Background(), Analytics[router.GroupFacts], "something unusual")
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Equal(t, "recent measured events", res.Description)
	assert.Contains(t, res.SQL, "FROM monitored_facts mf")
}

func TestFallbackFilter_KeywordRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		table     router.Table
		query     string
		wantConds []string
		wantDesc  string
	}{
		{
			name:      "violated rules",
			table:     router.TableMonitorRules,
			query:     "show violated rules",
			wantConds: []string{"r.is_violated = 'TRUE'"},
			wantDesc:  "violated rules",
		},
		{
			name:      "rules for a monitor id",
			table:     router.TableMonitorRules,
			query:     "rules for monitor 42",
			wantConds: []string{"r.monitor_id = 42"},
			wantDesc:  "rules for monitor 42",
		},
		{
			name:      "enabled monitors",
			table:     router.TableMonitoredFeeds,
			query:     "list enabled monitors",
			wantConds: []string{"is_enabled = 'TRUE'"},
			wantDesc:  "enabled monitors",
		},
		{
			name:      "monitor by quoted name",
			table:     router.TableMonitoredFeeds,
			query:     `monitors named "SAP"`,
			wantConds: []string{"monitor_system_name ILIKE '%SAP%'"},
			wantDesc:  "monitors with name containing 'SAP'",
		},
		{
			name:      "recent facts",
			table:     router.TableMonitorFacts,
			query:     "recent performance data",
			wantConds: []string{"f.start_time >= NOW() - INTERVAL '7 days'"},
			wantDesc:  "recent performance data",
		},
		{
			name:      "facts above threshold",
			table:     router.TableMonitorFacts,
			query:     "measures above 5000",
			wantConds: []string{"f.cummulative_measure > 5000"},
			wantDesc:  "monitors with cumulative measure above 5000",
		},
		{
			name:      "slack log alerts",
			table:     router.TableMonitorRulesLogs,
			query:     "show SLACK alerts",
			wantConds: []string{"l.channel = 'SLACK'"},
			wantDesc:  "slack alerts",
		},
		{
			name:      "pagerduty actions",
			table:     router.TableRulesActions,
			query:     "pagerduty actions",
			wantConds: []string{"e.executor_name = 'PAGERDUTY_TICKET'"},
			wantDesc:  "PagerDuty notification actions",
		},
		{
			name:      "email executors",
			table:     router.TableActionExecutors,
			query:     "email executors",
			wantConds: []string{"e.executor_name ILIKE '%EMAIL%'"},
			wantDesc:  "email action executors",
		},
		{
			name:      "no match means unfiltered",
			table:     router.TableMonitorRules,
			query:     "hmm",
			wantConds: nil,
			wantDesc:  "all rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conds, desc := Tables[tt.table].FallbackFilter(tt.query)
			assert.Equal(t, tt.wantConds, conds)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	td := Tables[router.TableMonitorRules]

	sql := td.Assemble([]string{"r.is_active = 'TRUE'", "r.is_violated = 'FALSE'"})
	assert.Contains(t, sql, "WHERE r.is_active = 'TRUE' AND r.is_violated = 'FALSE'")
	assert.True(t, strings.HasSuffix(sql, "LIMIT 100"))

	unfiltered := td.Assemble(nil)
	assert.NotContains(t, unfiltered, "WHERE")
}

func TestDescriptorCoverage(t *testing.T) {
	t.Parallel()

	tables := []router.Table{
		router.TableMonitoredFeeds, router.TableMonitorConditions, router.TableMonitorFacts,
		router.TableMonitorRules, router.TableRulesDefinitions, router.TableRulesActions,
		router.TableActionExecutors, router.TableMonitorRulesLogs,
	}
	for _, tbl := range tables {
		td, ok := Tables[tbl]
		require.True(t, ok, "missing descriptor for %s", tbl)
		assert.NotEmpty(t, td.BaseQuery)
		assert.NotEmpty(t, td.OrderBy)
		assert.NotEmpty(t, td.AllowedPrefixes)
		assert.Equal(t, 100, td.Limit)
	}

	groups := []router.Group{router.GroupMonitor, router.GroupFacts, router.GroupRules, router.GroupActions}
	for _, grp := range groups {
		ad, ok := Analytics[grp]
		require.True(t, ok, "missing analytics descriptor for %s", grp)
		assert.NotEmpty(t, ad.DefaultSQL)
		assert.NotEmpty(t, ad.DefaultDescription)
	}
}
