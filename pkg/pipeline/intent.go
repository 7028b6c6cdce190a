package pipeline

import (
	"context"
	_ "embed"
	"strings"
)

// Intent is the coarse pre-classification that decides whether a query goes
// through the full routing pipeline or is answered with a canned payload.
type Intent string

const (
	IntentMonitoringDetails Intent = "MONITORING_DETAILS"
	IntentCreateRule        Intent = "CREATE_RULE"
	IntentGenericQuestion   Intent = "GENERIC_QUESTION"
)

var intentLabels = []string{
	string(IntentMonitoringDetails),
	string(IntentCreateRule),
	string(IntentGenericQuestion),
}

//go:embed prompts/INTENT.md
var intentPrompt string

var (
	createRuleWords = []string{"create", "set", "setup", "configure", "add", "new", "alert", "watch"}
	monitoringWords = []string{
		"show", "get", "view", "display", "chart", "report", "violations", "status",
		"data", "analytics", "list", "rules", "monitor", "most", "highest", "average",
		"count", "group by", "which", "what", "how many", "give me", "plot", "graph",
		"visualize", "trend",
	}
)

// detectIntent classifies the query intent, degrading to keyword matching
// when classification fails.
func (p *Pipeline) detectIntent(ctx context.Context, query string) (Intent, error) {
	prompt := strings.Replace(intentPrompt, "{{QUERY}}", query, 1)
	label, err := p.classifier.Classify(ctx, prompt, intentLabels)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		fallback := keywordIntent(query)
		p.log.Warn("intent classification failed, using keyword fallback",
			"intent", fallback, "error", err)
		return fallback, nil
	}
	return Intent(label), nil
}

// keywordIntent resolves intent from keyword buckets. Creation words are
// checked first since creation queries often also mention monitoring terms.
func keywordIntent(query string) Intent {
	lower := strings.ToLower(query)
	for _, w := range createRuleWords {
		if strings.Contains(lower, w) {
			return IntentCreateRule
		}
	}
	for _, w := range monitoringWords {
		if strings.Contains(lower, w) {
			return IntentMonitoringDetails
		}
	}
	return IntentGenericQuestion
}

// GenericHelp is the canned payload for capability questions.
type GenericHelp struct {
	Message      string   `json:"message"`
	Capabilities []string `json:"capabilities"`
	Suggestion   string   `json:"suggestion"`
	Examples     []string `json:"examples"`
}

func genericHelp() GenericHelp {
	return GenericHelp{
		Message: "Hello! I'm your monitoring system assistant. I can help you with:",
		Capabilities: []string{
			"Setting up monitoring rules and alerts",
			"Querying monitoring data and generating reports",
			"Creating charts and visualizations",
			"Analyzing system performance and violations",
		},
		Suggestion: "Try asking me to 'Set a monitor' or 'Show me the current violations' to get started!",
		Examples: []string{
			"Set a monitor and alert me via email if API requests exceed 10 in 10 minutes",
			"Show me all currently violated rules",
			"Plot a chart of email notifications over time",
			"Give me a summary of recent violations",
		},
	}
}
