package render

import (
	"sellusgenie-backend/internal/models"
)

// Mode selects between the storefront and the builder canvas.
type Mode string

const (
	ModePublic  Mode = "public"
	ModePreview Mode = "preview"
)

const (
	FallbackNotPublished = "not_published"
	FallbackMissing      = "missing_document"
)

// Reasons attached to widgets that could not be rendered as stored.
const (
	ReasonUnknownType     = "unknown_type"
	ReasonMigrationFailed = "migration_failed"
	ReasonSchemaViolation = "schema_violation"
	ReasonFutureVersion   = "future_version"
)

type LogoKind string

const (
	LogoImage LogoKind = "image"
	LogoText  LogoKind = "text"
)

// Logo is the resolved brand slot of a logo widget.
type Logo struct {
	Kind     LogoKind `json:"kind"`
	ImageURL string   `json:"image_url,omitempty"`
	Alt      string   `json:"alt,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// ColSpan is the resolved column weight per breakpoint, always within 1..12.
type ColSpan struct {
	Small  int `json:"sm"`
	Medium int `json:"md"`
	Large  int `json:"lg"`
}

// Issue explains why a widget was degraded. Only attached in preview mode.
type Issue struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type Widget struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Version     int                    `json:"version"`
	Props       map[string]interface{} `json:"props"`
	ColSpan     ColSpan                `json:"col_span"`
	HideOn      []models.Breakpoint    `json:"hide_on,omitempty"`
	PreviewOnly bool                   `json:"preview_only,omitempty"`
	Logo        *Logo                  `json:"logo,omitempty"`
	Placeholder bool                   `json:"placeholder,omitempty"`
	Issue       *Issue                 `json:"issue,omitempty"`
}

type Row struct {
	ID      string   `json:"id"`
	Widgets []Widget `json:"widgets"`
}

type Section struct {
	ID              string `json:"id"`
	BackgroundColor string `json:"background_color,omitempty"`
	Padding         string `json:"padding,omitempty"`
	Rows            []Row  `json:"rows"`
}

// Tree is the fully resolved page handed to the presentation layer.
type Tree struct {
	PageID         string                `json:"page_id"`
	StoreID        string                `json:"store_id"`
	Name           string                `json:"name"`
	Slug           string                `json:"slug,omitempty"`
	Status         models.PageStatus     `json:"status"`
	SystemPageType models.SystemPageType `json:"system_page_type,omitempty"`
	Mode           Mode                  `json:"mode"`
	Theme          models.Theme          `json:"theme"`
	Sections       []Section             `json:"sections"`
	Fallback       bool                  `json:"fallback"`
	FallbackReason string                `json:"fallback_reason,omitempty"`
}

// WidgetCount returns the number of widgets in the tree.
func (t *Tree) WidgetCount() int {
	if t == nil {
		return 0
	}
	count := 0
	for _, section := range t.Sections {
		for _, row := range section.Rows {
			count += len(row.Widgets)
		}
	}
	return count
}
