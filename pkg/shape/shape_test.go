package shape

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/llm"
	"github.com/watchtowerhq/watchtower/pkg/store"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newDetector(fake *fakeLLM) *Detector {
	c := classify.New(fake, nil, classify.WithRetryUnit(time.Millisecond))
	return NewDetector(c, nil)
}

func TestDetect_Classified(t *testing.T) {
	t.Parallel()

	d := newDetector(&fakeLLM{response: "CHART"})
	shape, err := d.Detect(context.Background(), "plot violations over time")
	require.NoError(t, err)
	assert.Equal(t, ShapeChart, shape)
}

func TestDetect_FallsBackOnConnectivityFailure(t *testing.T) {
	t.Parallel()

	d := newDetector(&fakeLLM{err: fmt.Errorf("dial tcp: %w", llm.ErrConnectivity)})

	shape, err := d.Detect(context.Background(), "summarize the current rule status")
	require.NoError(t, err)
	assert.Equal(t, ShapeText, shape)
}

func TestDetect_FallsBackOnInvalidLabel(t *testing.T) {
	t.Parallel()

	d := newDetector(&fakeLLM{response: "SPREADSHEET"})

	shape, err := d.Detect(context.Background(), "weird request")
	require.NoError(t, err)
	assert.Equal(t, ShapeTable, shape)
}

func TestKeywordShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  Shape
	}{
		{"chart EMAIL notifications last month", ShapeChart},
		{"show the trend of alerts", ShapeChart},
		{"summarize violations", ShapeText},
		{"how many rules are active?", ShapeText},
		{"show me all monitors", ShapeTable},
		{"list violated rules", ShapeTable},
		{"something entirely different", ShapeTable},
		// Chart words win over table words when both appear.
		{"show me a graph of events", ShapeChart},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KeywordShape(tt.query))
		})
	}
}

func TestFormatTable_PreservesOrder(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{
		Columns: []string{"rule_id", "rule_name", "is_violated"},
		Rows: []store.Row{
			{"rule_id": float64(2), "rule_name": "beta", "is_violated": "TRUE"},
			{"rule_id": float64(1), "rule_name": "alpha", "is_violated": "FALSE"},
		},
	}

	payload := FormatTable(rs)
	assert.Equal(t, []string{"rule_id", "rule_name", "is_violated"}, payload.Columns)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "beta", payload.Rows[0]["rule_name"])
	assert.Equal(t, "alpha", payload.Rows[1]["rule_name"])
}

func TestFormatTable_Empty(t *testing.T) {
	t.Parallel()

	payload := FormatTable(&store.ResultSet{})
	assert.NotNil(t, payload.Columns)
	assert.NotNil(t, payload.Rows)
	assert.Empty(t, payload.Rows)
}

func TestFormatChart_BucketsByDay(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{
		Columns: []string{"log_id", "log_timestamp"},
		Rows: []store.Row{
			{"log_id": float64(1), "log_timestamp": "2025-08-13T16:12:25Z"},
			{"log_id": float64(2), "log_timestamp": "2025-08-13T18:01:00Z"},
			{"log_id": float64(3), "log_timestamp": "2025-08-14 09:00:00"},
			{"log_id": float64(4), "log_timestamp": "2025-08-12T23:59:59Z"},
		},
	}

	payload := FormatChart(rs)
	assert.Equal(t, []string{"2025-08-12", "2025-08-13", "2025-08-14"}, payload.Labels)
	assert.Equal(t, []int{1, 2, 1}, payload.Datasets)
}

func TestFormatChart_NoTimeColumn(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{
		Columns: []string{"id", "name"},
		Rows:    []store.Row{{"id": float64(1), "name": "x"}},
	}

	payload := FormatChart(rs)
	assert.Equal(t, []string{}, payload.Labels)
	assert.Equal(t, []int{}, payload.Datasets)
}

func TestFormatChart_Empty(t *testing.T) {
	t.Parallel()

	payload := FormatChart(&store.ResultSet{Columns: []string{"log_timestamp"}})
	assert.Equal(t, []string{}, payload.Labels)
	assert.Equal(t, []int{}, payload.Datasets)
}

func TestFormatText_Breakdowns(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{
		Columns: []string{"priority", "channel", "is_violated"},
		Rows: []store.Row{
			{"priority": "HIGH", "channel": "EMAIL", "is_violated": "TRUE"},
			{"priority": "HIGH", "channel": "SLACK", "is_violated": "TRUE"},
			{"priority": "LOW", "channel": "EMAIL", "is_violated": "TRUE"},
		},
	}

	payload := FormatText(rs, "violated rules")
	assert.Equal(t,
		"Found 3 violated rules. Priority breakdown: 2 HIGH, 1 LOW. Notifications: 2 via EMAIL, 1 via SLACK. Currently 3 rules are violated.",
		payload.Message)
}

func TestFormatText_OnlyPresentColumns(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{
		Columns: []string{"monitor_id", "is_enabled"},
		Rows: []store.Row{
			{"monitor_id": float64(1), "is_enabled": "TRUE"},
			{"monitor_id": float64(2), "is_enabled": "FALSE"},
		},
	}

	payload := FormatText(rs, "monitors")
	assert.Equal(t, "Found 2 monitors. 1 monitors are currently enabled.", payload.Message)
}

func TestFormatText_Empty(t *testing.T) {
	t.Parallel()

	payload := FormatText(&store.ResultSet{}, "violated rules")
	assert.Equal(t, "No violated rules found.", payload.Message)
}
