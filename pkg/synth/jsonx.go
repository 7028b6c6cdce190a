package synth

import (
	"regexp"
	"strings"
)

// extractJSON pulls the first JSON object out of a model response. Code
// blocks are preferred over bare objects since they are the most reliable
// signal of intent.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		start += 7 // len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(content, "{") {
				return content
			}
		}
	}

	if start := strings.Index(response, "{"); start != -1 {
		if obj := extractJSONObject(response, start); obj != "" {
			return obj
		}
		// Truncated output: take everything from the opening brace and let
		// repairJSON close it.
		return strings.TrimSpace(response[start:])
	}

	return ""
}

// extractJSONObject extracts a complete JSON object starting at the given
// position, properly handling strings that may contain braces.
func extractJSONObject(s string, start int) string {
	if start >= len(s) || s[start] != '{' {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// repairJSON applies the cheap fixes that recover most truncated model
// output: collapse embedded newlines (models format SQL across lines,
// which a strict parse rejects inside string values), close a missing
// brace, drop trailing commas.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	if !strings.HasSuffix(s, "}") {
		s += "}"
	}
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

var (
	conditionsRe  = regexp.MustCompile(`(?s)"where_conditions"\s*:\s*\[(.*?)\]`)
	descriptionRe = regexp.MustCompile(`"query_description"\s*:\s*"([^"]*)"`)
	quotedRe      = regexp.MustCompile(`"([^"]*)"`)
)

// scrapeFilterFields recovers where_conditions and query_description from
// JSON too mangled for a strict parse. Only fragments carrying an allowed
// alias prefix survive; everything else is assumed to be model noise.
func scrapeFilterFields(jsonStr string, prefixes []string) ([]string, string, bool) {
	condsMatch := conditionsRe.FindStringSubmatch(jsonStr)
	descMatch := descriptionRe.FindStringSubmatch(jsonStr)
	if condsMatch == nil || descMatch == nil {
		return nil, "", false
	}

	var conditions []string
	for _, m := range quotedRe.FindAllStringSubmatch(condsMatch[1], -1) {
		if hasAllowedPrefix(m[1], prefixes) {
			conditions = append(conditions, m[1])
		}
	}
	if len(conditions) == 0 {
		return nil, "", false
	}
	return conditions, descMatch[1], true
}

func hasAllowedPrefix(condition string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(condition, p) {
			return true
		}
	}
	return false
}
