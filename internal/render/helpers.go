package render

import (
	"strings"

	"sellusgenie-backend/internal/models"
)

func parseBool(value interface{}, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		trimmed := strings.TrimSpace(strings.ToLower(v))
		if trimmed == "" {
			return fallback
		}
		switch trimmed {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		default:
			return fallback
		}
	default:
		return fallback
	}
}

func clampSpan(value int) int {
	switch {
	case value < 1:
		return 1
	case value > models.MaxColumns:
		return models.MaxColumns
	default:
		return value
	}
}

// ResolveColSpan fills unset breakpoints from the next smaller one. An unset
// small breakpoint spans the full row.
func ResolveColSpan(span models.ColSpan) ColSpan {
	resolved := ColSpan{Small: models.MaxColumns}
	if span.Small != 0 {
		resolved.Small = clampSpan(span.Small)
	}

	resolved.Medium = resolved.Small
	if span.Medium != 0 {
		resolved.Medium = clampSpan(span.Medium)
	}

	resolved.Large = resolved.Medium
	if span.Large != 0 {
		resolved.Large = clampSpan(span.Large)
	}
	return resolved
}
