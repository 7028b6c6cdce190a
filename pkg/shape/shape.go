// Package shape decides how query results are presented (table, chart, or
// text summary) and renders rows into the matching payload. Shape detection
// uses the classifier with a keyword fallback, so a dead completion service
// degrades presentation rather than failing the request.
package shape

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/store"
)

// Shape selects the presentation of a result set.
type Shape string

const (
	ShapeTable Shape = "TABLE"
	ShapeChart Shape = "CHART"
	ShapeText  Shape = "TEXT"
)

var shapeLabels = []string{string(ShapeTable), string(ShapeChart), string(ShapeText)}

//go:embed prompts/SHAPE.md
var shapePrompt string

// Keyword buckets scanned in order when the classifier is unavailable.
// Chart intent beats summary intent beats plain listing; TABLE is the
// default for anything unrecognized.
var (
	chartWords = []string{"chart", "graph", "plot", "visualize", "trend", "over time", "by month", "by day"}
	textWords  = []string{"summarize", "summarise", "summary", "describe", "explain", "what is", "how many", "total", "count", "overview", "tell me about"}
	tableWords = []string{"show me", "list", "get", "find", "display", "view", "see"}
)

// Detector resolves the desired response shape for a query.
type Detector struct {
	classifier *classify.Classifier
	log        *slog.Logger
}

// NewDetector creates a Detector over the given classifier.
func NewDetector(classifier *classify.Classifier, log *slog.Logger) *Detector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Detector{classifier: classifier, log: log}
}

// Detect classifies the desired shape, degrading to keyword matching when
// classification fails. It never returns an error other than context
// cancellation; an undecidable query is presented as a table.
func (d *Detector) Detect(ctx context.Context, query string) (Shape, error) {
	prompt := strings.Replace(shapePrompt, "{{QUERY}}", query, 1)
	label, err := d.classifier.Classify(ctx, prompt, shapeLabels)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		fallback := KeywordShape(query)
		d.log.Warn("shape classification failed, using keyword fallback",
			"shape", fallback, "error", err)
		return fallback, nil
	}
	return Shape(label), nil
}

// KeywordShape resolves a shape from keyword buckets alone.
func KeywordShape(query string) Shape {
	lower := strings.ToLower(query)
	for _, w := range chartWords {
		if strings.Contains(lower, w) {
			return ShapeChart
		}
	}
	for _, w := range textWords {
		if strings.Contains(lower, w) {
			return ShapeText
		}
	}
	for _, w := range tableWords {
		if strings.Contains(lower, w) {
			return ShapeTable
		}
	}
	return ShapeTable
}

// TablePayload presents rows with their original column order.
type TablePayload struct {
	Columns []string    `json:"columns"`
	Rows    []store.Row `json:"rows"`
}

// ChartPayload presents per-day event counts for a time series line chart.
type ChartPayload struct {
	Labels   []string `json:"labels"`
	Datasets []int    `json:"datasets"`
}

// TextPayload presents a natural-language summary.
type TextPayload struct {
	Message string `json:"message"`
}

// FormatTable projects a result set into a table payload.
func FormatTable(rs *store.ResultSet) TablePayload {
	payload := TablePayload{Columns: rs.Columns, Rows: rs.Rows}
	if payload.Columns == nil {
		payload.Columns = []string{}
	}
	if payload.Rows == nil {
		payload.Rows = []store.Row{}
	}
	return payload
}

var timeColumnHints = []string{"timestamp", "time", "date", "created", "start_time", "end_time"}

// FormatChart buckets rows by day on the first timestamp-like column. A
// result set with no such column yields an empty chart; only time-bucketable
// data can be charted.
func FormatChart(rs *store.ResultSet) ChartPayload {
	empty := ChartPayload{Labels: []string{}, Datasets: []int{}}
	if len(rs.Rows) == 0 {
		return empty
	}

	timeColumn := ""
	for _, col := range rs.Columns {
		lower := strings.ToLower(col)
		for _, hint := range timeColumnHints {
			if strings.Contains(lower, hint) {
				timeColumn = col
				break
			}
		}
		if timeColumn != "" {
			break
		}
	}
	if timeColumn == "" {
		return empty
	}

	counts := make(map[string]int)
	for _, row := range rs.Rows {
		v := row[timeColumn]
		if v == nil {
			continue
		}
		date := datePart(fmt.Sprintf("%v", v))
		if date == "" {
			continue
		}
		counts[date]++
	}

	labels := make([]string, 0, len(counts))
	for date := range counts {
		labels = append(labels, date)
	}
	sort.Strings(labels)

	datasets := make([]int, len(labels))
	for i, date := range labels {
		datasets[i] = counts[date]
	}
	return ChartPayload{Labels: labels, Datasets: datasets}
}

// datePart truncates a timestamp string to its YYYY-MM-DD prefix.
func datePart(ts string) string {
	if i := strings.Index(ts, "T"); i != -1 {
		return ts[:i]
	}
	if i := strings.Index(ts, " "); i != -1 {
		return ts[:i]
	}
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}

// FormatText summarizes a result set: total count first, then breakdowns for
// the well-known columns that are present, in a fixed order (priority,
// channel, violated, enabled).
func FormatText(rs *store.ResultSet, description string) TextPayload {
	if len(rs.Rows) == 0 {
		return TextPayload{Message: fmt.Sprintf("No %s found.", description)}
	}

	parts := []string{fmt.Sprintf("Found %d %s.", len(rs.Rows), description)}
	sample := rs.Rows[0]

	if _, ok := sample["priority"]; ok {
		if summary := countBreakdown(rs.Rows, "priority", "%d %s"); summary != "" {
			parts = append(parts, fmt.Sprintf("Priority breakdown: %s.", summary))
		}
	}
	if _, ok := sample["channel"]; ok {
		if summary := countBreakdown(rs.Rows, "channel", "%d via %s"); summary != "" {
			parts = append(parts, fmt.Sprintf("Notifications: %s.", summary))
		}
	}
	if _, ok := sample["is_violated"]; ok {
		if n := countTrue(rs.Rows, "is_violated"); n > 0 {
			parts = append(parts, fmt.Sprintf("Currently %d rules are violated.", n))
		}
	}
	if _, ok := sample["is_enabled"]; ok {
		if n := countTrue(rs.Rows, "is_enabled"); n > 0 {
			parts = append(parts, fmt.Sprintf("%d monitors are currently enabled.", n))
		}
	}

	return TextPayload{Message: strings.Join(parts, " ")}
}

// countBreakdown counts non-null values of a column and formats each
// (count, value) pair in first-seen order.
func countBreakdown(rows []store.Row, column, pairFormat string) string {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		v, ok := row[column].(string)
		if !ok || v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	pairs := make([]string, 0, len(order))
	for _, v := range order {
		pairs = append(pairs, fmt.Sprintf(pairFormat, counts[v], v))
	}
	return strings.Join(pairs, ", ")
}

func countTrue(rows []store.Row, column string) int {
	n := 0
	for _, row := range rows {
		if v, ok := row[column].(string); ok && v == "TRUE" {
			n++
		}
	}
	return n
}
