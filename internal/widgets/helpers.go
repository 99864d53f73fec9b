package widgets

import (
	"html"
	"strings"
)

var alignOptions = []string{"left", "center", "right"}

func getString(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	if value, ok := props[key]; ok {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// getInt reads a numeric prop decoded either from JSON (float64) or from Go defaults (int).
func getInt(props map[string]interface{}, key string, fallback int) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func setDefault(props map[string]interface{}, key string, value interface{}) {
	if _, ok := props[key]; !ok {
		props[key] = value
	}
}

// rename moves props[from] to props[to] unless to is already set.
func rename(props map[string]interface{}, from, to string) {
	if value, ok := props[from]; ok {
		if _, exists := props[to]; !exists {
			props[to] = value
		}
		delete(props, from)
	}
}

func paragraph(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "<") {
		return trimmed
	}
	return "<p>" + html.EscapeString(trimmed) + "</p>"
}
