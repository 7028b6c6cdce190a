package router

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts/*.md
var promptsFS embed.FS

// Prompts contains all the classification prompts loaded from embedded files.
type Prompts struct {
	Group                 string // Top-level group selection
	RulesDataType         string // CURRENT_DATA vs HISTORICAL_DATA for the rules group
	MonitorTables         string // Table selection within the monitor group
	FactsTables           string // Table selection within the facts group
	RulesCurrentTables    string // Table selection for current rules data
	RulesHistoricalTables string // Table selection for historical rules data
	ActionsTables         string // Table selection within the actions group
}

// LoadPrompts loads all classification prompts from the embedded filesystem.
func LoadPrompts() (*Prompts, error) {
	p := &Prompts{}

	var err error
	if p.Group, err = loadPrompt("GROUP.md"); err != nil {
		return nil, fmt.Errorf("failed to load GROUP: %w", err)
	}
	if p.RulesDataType, err = loadPrompt("RULES_DATA_TYPE.md"); err != nil {
		return nil, fmt.Errorf("failed to load RULES_DATA_TYPE: %w", err)
	}
	if p.MonitorTables, err = loadPrompt("MONITOR_TABLES.md"); err != nil {
		return nil, fmt.Errorf("failed to load MONITOR_TABLES: %w", err)
	}
	if p.FactsTables, err = loadPrompt("FACTS_TABLES.md"); err != nil {
		return nil, fmt.Errorf("failed to load FACTS_TABLES: %w", err)
	}
	if p.RulesCurrentTables, err = loadPrompt("RULES_CURRENT_TABLES.md"); err != nil {
		return nil, fmt.Errorf("failed to load RULES_CURRENT_TABLES: %w", err)
	}
	if p.RulesHistoricalTables, err = loadPrompt("RULES_HISTORICAL_TABLES.md"); err != nil {
		return nil, fmt.Errorf("failed to load RULES_HISTORICAL_TABLES: %w", err)
	}
	if p.ActionsTables, err = loadPrompt("ACTIONS_TABLES.md"); err != nil {
		return nil, fmt.Errorf("failed to load ACTIONS_TABLES: %w", err)
	}

	return p, nil
}

func loadPrompt(name string) (string, error) {
	data, err := promptsFS.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// render substitutes the user query into a prompt template.
func render(prompt, query string) string {
	return strings.Replace(prompt, "{{QUERY}}", query, 1)
}
