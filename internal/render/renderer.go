// Package render turns a stored page document into a resolved tree for the
// storefront or the builder preview.
package render

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/tokens"
	"sellusgenie-backend/internal/widgets"
	"sellusgenie-backend/pkg/logger"
)

const useStoreLogoKey = "useStoreLogo"

// Options tunes a Renderer.
type Options struct {
	// OnFallback is called once for every widget that could not be rendered
	// as stored. It must be safe for concurrent use.
	OnFallback func(reason string)
}

// Renderer is stateless apart from its registry and may be shared between goroutines.
type Renderer struct {
	registry *widgets.Registry
	pipeline *widgets.Pipeline
	opts     Options
}

func New(registry *widgets.Registry, opts Options) *Renderer {
	return &Renderer{
		registry: registry,
		pipeline: widgets.NewPipeline(registry),
		opts:     opts,
	}
}

// RenderPublic renders doc for the live storefront. Only published documents
// are rendered; preview-only widgets and unknown widget types are omitted.
func (r *Renderer) RenderPublic(ctx context.Context, doc *models.PageDocument, store models.StoreContext, theme models.Theme) *Tree {
	return r.Render(ctx, doc, store, theme, ModePublic)
}

// RenderPreview renders doc for the builder canvas, drafts included. Widgets
// that fail are kept as placeholders carrying the reason.
func (r *Renderer) RenderPreview(ctx context.Context, doc *models.PageDocument, store models.StoreContext, theme models.Theme) *Tree {
	return r.Render(ctx, doc, store, theme, ModePreview)
}

// Render never fails as a whole: per-widget problems degrade only that widget.
func (r *Renderer) Render(ctx context.Context, doc *models.PageDocument, store models.StoreContext, theme models.Theme, mode Mode) *Tree {
	if doc == nil {
		return &Tree{StoreID: store.StoreID, Mode: mode, Theme: theme.Merge(nil), Sections: []Section{}, Fallback: true, FallbackReason: FallbackMissing}
	}

	tree := &Tree{
		PageID:         doc.ID,
		StoreID:        doc.StoreID,
		Name:           doc.Name,
		Slug:           doc.Slug,
		Status:         doc.Status,
		SystemPageType: doc.SystemPageType,
		Mode:           mode,
		Theme:          theme.Merge(doc.ThemeOverrides),
		Sections:       []Section{},
	}
	// Render directives are consumed here and are not presentation tokens.
	delete(tree.Theme, useStoreLogoKey)

	if mode == ModePublic && !doc.IsPublished() {
		tree.Fallback = true
		tree.FallbackReason = FallbackNotPublished
		return tree
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"store_id": doc.StoreID,
		"page_id":  doc.ID,
		"mode":     string(mode),
	})
	overrides := map[string]interface{}(doc.ThemeOverrides)

	for _, section := range doc.Sections {
		rendered := Section{
			ID:              section.ID,
			BackgroundColor: section.BackgroundColor,
			Padding:         section.Padding,
			Rows:            make([]Row, 0, len(section.Rows)),
		}
		attrs := section.Attributes()

		for _, row := range section.Rows {
			renderedRow := Row{ID: row.ID, Widgets: make([]Widget, 0, len(row.Widgets))}
			for _, widget := range row.Widgets {
				if out, ok := r.renderWidget(log, widget, attrs, overrides, store, mode); ok {
					renderedRow.Widgets = append(renderedRow.Widgets, out)
				}
			}
			rendered.Rows = append(rendered.Rows, renderedRow)
		}
		tree.Sections = append(tree.Sections, rendered)
	}

	return tree
}

func (r *Renderer) renderWidget(log *logrus.Entry, widget models.Widget, attrs, overrides map[string]interface{}, store models.StoreContext, mode Mode) (Widget, bool) {
	previewOnly := widget.Visibility != nil && widget.Visibility.PreviewOnly
	if previewOnly && mode == ModePublic {
		return Widget{}, false
	}

	out := Widget{
		ID:          widget.ID,
		Type:        widget.Type,
		Version:     widgets.StoredVersion(widget),
		ColSpan:     ResolveColSpan(widget.ColSpan),
		PreviewOnly: previewOnly,
	}
	if widget.Visibility != nil && len(widget.Visibility.HideOn) > 0 {
		out.HideOn = append([]models.Breakpoint(nil), widget.Visibility.HideOn...)
	}

	widgetLog := log.WithFields(logrus.Fields{
		"widget_id":   widget.ID,
		"widget_type": widget.Type,
	})

	def, err := r.registry.Resolve(widget.Type)
	if err != nil {
		r.fallback(widgetLog, ReasonUnknownType, err)
		if mode == ModePublic {
			return Widget{}, false
		}
		out.Placeholder = true
		out.Props = map[string]interface{}{}
		out.Issue = &Issue{Reason: ReasonUnknownType, Message: err.Error()}
		return out, true
	}

	result := r.pipeline.Resolve(def, widget)
	if result.Err != nil {
		reason := fallbackReason(result)
		r.fallback(widgetLog, reason, result.Err)
		if mode == ModePreview {
			out.Issue = &Issue{Reason: reason, Message: result.Err.Error()}
		}
	}
	out.Version = result.Version

	props := mergeProps(def, attrs, overrides, result.Props)
	def.RewriteText(props, func(text string) string {
		return tokens.Substitute(text, store)
	})
	out.Props = props

	if def.LogoSlot {
		out.Logo = resolveLogo(overrides, store, props)
	}

	return out, true
}

func (r *Renderer) fallback(log *logrus.Entry, reason string, err error) {
	log.WithError(err).WithField("reason", reason).Warn("Widget rendered with fallback")
	if r.opts.OnFallback != nil {
		r.opts.OnFallback(reason)
	}
}

func fallbackReason(result widgets.Result) string {
	switch {
	case result.Outcome == widgets.OutcomeDowngrade:
		return ReasonFutureVersion
	case errors.Is(result.Err, widgets.ErrMigrationFailed):
		return ReasonMigrationFailed
	default:
		return ReasonSchemaViolation
	}
}

// mergeProps layers default props, section attributes, page theme overrides
// and stored props, later layers winning. Section attributes and theme
// overrides only reach the definition's presentation keys.
func mergeProps(def *widgets.Definition, attrs, overrides, stored map[string]interface{}) map[string]interface{} {
	merged := def.Defaults()
	for _, key := range def.PresentationKeys {
		if value, ok := attrs[key]; ok {
			merged[key] = models.CloneValue(value)
		}
		if value, ok := overrides[key]; ok {
			merged[key] = models.CloneValue(value)
		}
	}
	for key, value := range stored {
		merged[key] = models.CloneValue(value)
	}
	return merged
}

func resolveLogo(overrides map[string]interface{}, store models.StoreContext, props map[string]interface{}) *Logo {
	logoURL := strings.TrimSpace(store.LogoURL)
	if parseBool(overrides[useStoreLogoKey], false) && logoURL != "" {
		alt, _ := props["altText"].(string)
		if strings.TrimSpace(alt) == "" {
			alt = store.StoreName
		}
		return &Logo{Kind: LogoImage, ImageURL: logoURL, Alt: alt}
	}
	return &Logo{Kind: LogoText, Text: store.StoreName}
}
