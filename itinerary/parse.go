package itinerary

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// RecoverJSON parses model output that may wrap a JSON object in prose or
// markdown code fences. It returns nil when no object can be recovered; it
// never panics.
func RecoverJSON(text string) map[string]any {
	cleaned := stripFences(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj
	}

	// Salvage the first-{ to last-} span and retry.
	if span := jsonSpanRe.FindString(cleaned); span != "" {
		obj = nil
		if err := json.Unmarshal([]byte(span), &obj); err == nil {
			return obj
		}
	}
	return nil
}

// stripFences removes leading/trailing triple-backtick markers, optionally
// tagged "json", plus surrounding whitespace.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
