package service

import (
	"context"
	"fmt"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/repository"
	"sellusgenie-backend/internal/tokens"
	"sellusgenie-backend/internal/widgets"
	"sellusgenie-backend/pkg/logger"
)

// UpgradeReport summarises a widget upgrade sweep over one or more stores.
type UpgradeReport struct {
	StoreID         string            `json:"store_id,omitempty"`
	PagesScanned    int               `json:"pages_scanned"`
	PagesUpdated    int               `json:"pages_updated"`
	WidgetsUpgraded int               `json:"widgets_upgraded"`
	Failures        map[string]string `json:"failures,omitempty"`
}

func (r *UpgradeReport) add(other *UpgradeReport) {
	r.PagesScanned += other.PagesScanned
	r.PagesUpdated += other.PagesUpdated
	r.WidgetsUpgraded += other.WidgetsUpgraded
	for id, msg := range other.Failures {
		r.fail(id, msg)
	}
}

func (r *UpgradeReport) fail(pageID, msg string) {
	if r.Failures == nil {
		r.Failures = make(map[string]string)
	}
	r.Failures[pageID] = msg
}

// LiteralChange is one prop rewritten from a literal store value into tokens.
type LiteralChange struct {
	PageID   string `json:"page_id"`
	PageName string `json:"page_name"`
	WidgetID string `json:"widget_id"`
	Prop     string `json:"prop"`
	Before   string `json:"before"`
	After    string `json:"after"`
}

type TokenizeReport struct {
	StoreID      string          `json:"store_id"`
	DryRun       bool            `json:"dry_run"`
	PagesUpdated int             `json:"pages_updated"`
	Changes      []LiteralChange `json:"changes"`
}

// MaintenanceService rewrites stored documents in bulk: widget upgrades and
// literal-to-token repairs.
type MaintenanceService struct {
	pageRepo  repository.PageRepository
	storeRepo repository.StoreRepository
	stores    StoreContextSource
	registry  *widgets.Registry
	pipeline  *widgets.Pipeline
	cache     RenderCache
}

func NewMaintenanceService(pageRepo repository.PageRepository, storeRepo repository.StoreRepository, stores StoreContextSource, registry *widgets.Registry, renderCache RenderCache) *MaintenanceService {
	return &MaintenanceService{
		pageRepo:  pageRepo,
		storeRepo: storeRepo,
		stores:    stores,
		registry:  registry,
		pipeline:  widgets.NewPipeline(registry),
		cache:     renderCache,
	}
}

// UpgradeWidgets brings every stale widget of a store to its current version.
// A page with any widget that cannot be upgraded strictly is left untouched
// and reported.
func (s *MaintenanceService) UpgradeWidgets(ctx context.Context, storeID string) (*UpgradeReport, error) {
	pages, err := s.pageRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	report := &UpgradeReport{StoreID: storeID}
	for i := range pages {
		page := &pages[i]
		report.PagesScanned++

		changed, err := s.pipeline.UpgradeDocument(page)
		if err != nil {
			report.fail(page.ID, err.Error())
			logger.Warn("Page left at stored widget versions", map[string]interface{}{
				"store_id": storeID,
				"page_id":  page.ID,
				"error":    err.Error(),
			})
			continue
		}
		if changed == 0 {
			continue
		}

		if err := s.pageRepo.Update(ctx, page); err != nil {
			return report, fmt.Errorf("failed to save page %s: %w", page.ID, err)
		}
		report.PagesUpdated++
		report.WidgetsUpgraded += changed
	}

	if report.PagesUpdated > 0 {
		invalidateRenders(ctx, s.cache, storeID)
	}
	return report, nil
}

// UpgradeAllStores runs UpgradeWidgets over every store. It stops early only
// when the context is cancelled or a write fails.
func (s *MaintenanceService) UpgradeAllStores(ctx context.Context) (*UpgradeReport, error) {
	ids, err := s.storeRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	total := &UpgradeReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		report, err := s.UpgradeWidgets(ctx, id)
		if report != nil {
			total.add(report)
		}
		if err != nil {
			return total, err
		}
	}

	logger.Info("Widget upgrade sweep finished", map[string]interface{}{
		"stores":           len(ids),
		"pages_updated":    total.PagesUpdated,
		"widgets_upgraded": total.WidgetsUpgraded,
		"failures":         len(total.Failures),
	})
	return total, nil
}

// TokenizeLiterals rewrites literal store values found in substitutable props
// of all of a store's pages into token form. With dryRun the changes are only
// reported.
func (s *MaintenanceService) TokenizeLiterals(ctx context.Context, storeID string, dryRun bool) (*TokenizeReport, error) {
	snapshot, err := s.stores.GetStoreContext(ctx, storeID)
	if err != nil {
		return nil, err
	}

	pages, err := s.pageRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	report := &TokenizeReport{StoreID: storeID, DryRun: dryRun, Changes: []LiteralChange{}}
	for i := range pages {
		page := &pages[i]
		changes := s.tokenizePage(page, snapshot.Context)
		if len(changes) == 0 {
			continue
		}
		report.Changes = append(report.Changes, changes...)
		if dryRun {
			continue
		}

		if err := s.pageRepo.Update(ctx, page); err != nil {
			return report, fmt.Errorf("failed to save page %s: %w", page.ID, err)
		}
		report.PagesUpdated++
	}

	if report.PagesUpdated > 0 {
		invalidateRenders(ctx, s.cache, storeID)
	}
	logger.Info("Tokenized literal store values", map[string]interface{}{
		"store_id":      storeID,
		"dry_run":       dryRun,
		"changes":       len(report.Changes),
		"pages_updated": report.PagesUpdated,
	})
	return report, nil
}

// tokenizePage brings each widget to its current version before looking for
// literals, so legacy props such as a v1 footer's "text" are covered. A widget
// that cannot be upgraded is scanned as stored.
func (s *MaintenanceService) tokenizePage(page *models.PageDocument, store models.StoreContext) []LiteralChange {
	var changes []LiteralChange
	for si := range page.Sections {
		for ri := range page.Sections[si].Rows {
			row := &page.Sections[si].Rows[ri]
			for wi := range row.Widgets {
				widget := &row.Widgets[wi]
				def, err := s.registry.Resolve(widget.Type)
				if err != nil || widget.Props == nil {
					continue
				}

				props, version, err := s.pipeline.Upgrade(def, *widget)
				if err != nil {
					props, version = models.CloneMap(widget.Props), widget.Version
				}

				rewritten := def.RewriteText(props, func(text string) string {
					return tokens.Tokenize(text, store)
				})
				if len(rewritten) == 0 {
					continue
				}

				widget.Props = props
				widget.Version = version
				for _, change := range rewritten {
					changes = append(changes, LiteralChange{
						PageID:   page.ID,
						PageName: page.Name,
						WidgetID: widget.ID,
						Prop:     change.Path,
						Before:   change.Before,
						After:    change.After,
					})
				}
			}
		}
	}
	return changes
}
