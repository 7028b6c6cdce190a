package router

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/llm"
)

// scriptLLM answers each call with the next scripted response. Route's
// classification order is deterministic, so position encodes the stage.
type scriptLLM struct {
	responses []string
	errs      []error
	prompts   []string
}

func (s *scriptLLM) Complete(ctx context.Context, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func newTestRouter(t *testing.T, fake *scriptLLM) *Router {
	t.Helper()
	c := classify.New(fake, nil, classify.WithRetryUnit(time.Millisecond))
	r, err := New(c, nil)
	require.NoError(t, err)
	return r
}

func TestLoadPrompts(t *testing.T) {
	t.Parallel()

	p, err := LoadPrompts()
	require.NoError(t, err)

	for name, prompt := range map[string]string{
		"Group":                 p.Group,
		"RulesDataType":         p.RulesDataType,
		"MonitorTables":         p.MonitorTables,
		"FactsTables":           p.FactsTables,
		"RulesCurrentTables":    p.RulesCurrentTables,
		"RulesHistoricalTables": p.RulesHistoricalTables,
		"ActionsTables":         p.ActionsTables,
	} {
		assert.Contains(t, prompt, "{{QUERY}}", "prompt %s missing query placeholder", name)
	}
}

func TestRoute_MonitorGroup(t *testing.T) {
	t.Parallel()

	fake := &scriptLLM{responses: []string{"MONITOR_GROUP", "MONITORED_FEEDS"}}
	r := newTestRouter(t, fake)

	id, err := r.Route(context.Background(), "show me all monitors")
	require.NoError(t, err)
	assert.Equal(t, HandlerID{Group: GroupMonitor, Table: TableMonitoredFeeds}, id)
	require.Len(t, fake.prompts, 2)
	assert.Contains(t, fake.prompts[0], "show me all monitors")
	assert.Contains(t, fake.prompts[1], "show me all monitors")
}

func TestRoute_RulesHistoricalCascade(t *testing.T) {
	t.Parallel()

	// Channel notification queries route through the data-type step into the
	// historical rules log.
	fake := &scriptLLM{responses: []string{"RULES_GROUP", "HISTORICAL_DATA", "MONITOR_RULES_LOGS"}}
	r := newTestRouter(t, fake)

	id, err := r.Route(context.Background(), "EMAIL notifications for last week")
	require.NoError(t, err)
	assert.Equal(t, HandlerID{Group: GroupRules, Table: TableMonitorRulesLogs}, id)
	require.Len(t, fake.prompts, 3)
	assert.Contains(t, fake.prompts[1], "CURRENT_DATA")
	assert.Contains(t, fake.prompts[2], "MONITOR_RULES_LOGS")
}

func TestRoute_RulesCurrent(t *testing.T) {
	t.Parallel()

	fake := &scriptLLM{responses: []string{"RULES_GROUP", "CURRENT_DATA", "MONITOR_RULES"}}
	r := newTestRouter(t, fake)

	id, err := r.Route(context.Background(), "which rules are currently violated?")
	require.NoError(t, err)
	assert.Equal(t, HandlerID{Group: GroupRules, Table: TableMonitorRules}, id)
}

func TestRoute_AnalyticsKeepsGroup(t *testing.T) {
	t.Parallel()

	fake := &scriptLLM{responses: []string{"MONITOR_GROUP", "ANALYTICS"}}
	r := newTestRouter(t, fake)

	id, err := r.Route(context.Background(), "which monitor has the most rules?")
	require.NoError(t, err)
	assert.Equal(t, HandlerID{Group: GroupMonitor, Table: TableAnalytics}, id)
}

func TestRoute_ProseLabelResolved(t *testing.T) {
	t.Parallel()

	fake := &scriptLLM{responses: []string{
		"The query belongs to ACTIONS_GROUP.",
		"action_executors",
	}}
	r := newTestRouter(t, fake)

	id, err := r.Route(context.Background(), "what actions are available?")
	require.NoError(t, err)
	assert.Equal(t, HandlerID{Group: GroupActions, Table: TableActionExecutors}, id)
}

func TestRoute_GroupFailureStopsCascade(t *testing.T) {
	t.Parallel()

	fake := &scriptLLM{responses: []string{"WEATHER_GROUP"}}
	r := newTestRouter(t, fake)

	_, err := r.Route(context.Background(), "show monitors")
	require.Error(t, err)
	assert.ErrorIs(t, err, classify.ErrInvalidLabel)
	assert.Len(t, fake.prompts, 1, "table classification should not run after group failure")
}

func TestRoute_TableFailurePropagates(t *testing.T) {
	t.Parallel()

	fake := &scriptLLM{
		responses: []string{"FACTS_GROUP", ""},
		errs:      []error{nil, fmt.Errorf("dial tcp: %w", llm.ErrConnectivity)},
	}
	r := newTestRouter(t, fake)

	_, err := r.Route(context.Background(), "show events")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrConnectivity)
	assert.True(t, strings.Contains(err.Error(), "FACTS_GROUP"))
}

func TestRoute_TableLabelSets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responses []string
		want      HandlerID
	}{
		{
			name:      "monitor conditions",
			responses: []string{"MONITOR_GROUP", "MONITOR_CONDITIONS"},
			want:      HandlerID{Group: GroupMonitor, Table: TableMonitorConditions},
		},
		{
			name:      "facts",
			responses: []string{"FACTS_GROUP", "MONITOR_FACTS"},
			want:      HandlerID{Group: GroupFacts, Table: TableMonitorFacts},
		},
		{
			name:      "rules definitions",
			responses: []string{"RULES_GROUP", "CURRENT_DATA", "RULES_DEFINITIONS"},
			want:      HandlerID{Group: GroupRules, Table: TableRulesDefinitions},
		},
		{
			name:      "rule actions",
			responses: []string{"RULES_GROUP", "CURRENT_DATA", "RULES_ACTIONS"},
			want:      HandlerID{Group: GroupRules, Table: TableRulesActions},
		},
		{
			name:      "historical analytics",
			responses: []string{"RULES_GROUP", "HISTORICAL_DATA", "ANALYTICS"},
			want:      HandlerID{Group: GroupRules, Table: TableAnalytics},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &scriptLLM{responses: tt.responses}
			r := newTestRouter(t, fake)

			id, err := r.Route(context.Background(), "some question")
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
