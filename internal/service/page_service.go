package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/repository"
	"sellusgenie-backend/internal/tokens"
	"sellusgenie-backend/internal/widgets"
	"sellusgenie-backend/pkg/logger"
	"sellusgenie-backend/pkg/utils"
	"sellusgenie-backend/pkg/validator"
)

// PageService is the builder write path. Every document it persists is at
// current widget versions, schema-valid and free of literal store values.
type PageService struct {
	pageRepo repository.PageRepository
	stores   StoreContextSource
	registry *widgets.Registry
	pipeline *widgets.Pipeline
	cache    RenderCache
	now      func() time.Time
}

func NewPageService(pageRepo repository.PageRepository, stores StoreContextSource, registry *widgets.Registry, renderCache RenderCache) *PageService {
	return &PageService{
		pageRepo: pageRepo,
		stores:   stores,
		registry: registry,
		pipeline: widgets.NewPipeline(registry),
		cache:    renderCache,
		now:      time.Now,
	}
}

func (s *PageService) Create(ctx context.Context, storeID string, req models.CreatePageRequest) (*models.PageDocument, error) {
	snapshot, err := s.stores.GetStoreContext(ctx, storeID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("page name is required")
	}

	pageType := req.PageType
	if pageType == "" {
		pageType = models.PageTypeContent
	}

	page := &models.PageDocument{
		StoreID:        storeID,
		Name:           name,
		Status:         models.PageStatusDraft,
		PageType:       pageType,
		SystemPageType: req.SystemPageType,
		ThemeOverrides: models.JSONMap(models.CloneMap(req.ThemeOverrides)),
		Sections:       models.PageSections(req.Sections),
	}

	if pageType == models.PageTypeContent {
		slug := req.Slug
		if strings.TrimSpace(slug) == "" {
			slug = name
		}
		page.Slug = utils.GenerateSlug(slug)
		if page.Slug == "" {
			return nil, validationError("page slug is required")
		}
		if err := s.ensureSlugAvailable(ctx, storeID, page.Slug, ""); err != nil {
			return nil, err
		}
	}

	if err := s.normalize(page, snapshot.Context); err != nil {
		return nil, err
	}

	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	logger.Info("Page created", map[string]interface{}{"store_id": storeID, "page_id": page.ID})
	return page, nil
}

// Update replaces the editable parts of a page. The last write wins.
func (s *PageService) Update(ctx context.Context, id string, req models.UpdatePageRequest) (*models.PageDocument, error) {
	page, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.stores.GetStoreContext(ctx, page.StoreID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("page name cannot be empty")
		}
		page.Name = name
	}
	if req.Slug != nil && !page.IsSystemPage() {
		slug := utils.GenerateSlug(*req.Slug)
		if slug == "" {
			return nil, validationError("page slug is required")
		}
		if slug != page.Slug {
			if err := s.ensureSlugAvailable(ctx, page.StoreID, slug, page.ID); err != nil {
				return nil, err
			}
		}
		page.Slug = slug
	}
	if req.ThemeOverrides != nil {
		page.ThemeOverrides = models.JSONMap(models.CloneMap(req.ThemeOverrides))
	}
	if req.Sections != nil {
		page.Sections = models.PageSections(*req.Sections)
	}

	if err := s.normalize(page, snapshot.Context); err != nil {
		return nil, err
	}

	if err := s.pageRepo.Update(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}

	invalidateRenders(ctx, s.cache, page.StoreID)
	return page, nil
}

func (s *PageService) Get(ctx context.Context, id string) (*models.PageDocument, error) {
	page, err := s.pageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return page, nil
}

func (s *PageService) ListByStore(ctx context.Context, storeID string) ([]models.PageDocument, error) {
	return s.pageRepo.ListByStore(ctx, storeID)
}

// Publish makes a draft live. Publishing a system page demotes any other
// published page holding the same role.
func (s *PageService) Publish(ctx context.Context, id string) (*models.PageDocument, error) {
	page, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := page.TransitionTo(models.PageStatusPublished, s.now()); err != nil {
		return nil, err
	}

	demoted, err := s.pageRepo.Publish(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to publish page: %w", err)
	}
	if len(demoted) > 0 {
		logger.Info("Demoted previous system pages", map[string]interface{}{
			"store_id":         page.StoreID,
			"page_id":          page.ID,
			"system_page_type": page.SystemPageType,
			"demoted":          strings.Join(demoted, ","),
		})
	}

	invalidateRenders(ctx, s.cache, page.StoreID)
	return page, nil
}

func (s *PageService) Unpublish(ctx context.Context, id string) (*models.PageDocument, error) {
	page, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := page.TransitionTo(models.PageStatusDraft, s.now()); err != nil {
		return nil, err
	}

	if err := s.pageRepo.Update(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to unpublish page: %w", err)
	}

	invalidateRenders(ctx, s.cache, page.StoreID)
	return page, nil
}

// Duplicate copies a page into a new draft with a fresh id and a free slug.
func (s *PageService) Duplicate(ctx context.Context, id string) (*models.PageDocument, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	copyPage := source.Clone()
	copyPage.ID = ""
	copyPage.CreatedAt = time.Time{}
	copyPage.UpdatedAt = time.Time{}
	copyPage.Status = models.PageStatusDraft
	copyPage.PublishedAt = nil
	copyPage.Name = source.Name + " (copy)"

	if !copyPage.IsSystemPage() {
		slug, err := s.freeSlug(ctx, source.StoreID, source.Slug+"-copy")
		if err != nil {
			return nil, err
		}
		copyPage.Slug = slug
	}

	if err := s.pageRepo.Create(ctx, copyPage); err != nil {
		return nil, fmt.Errorf("failed to duplicate page: %w", err)
	}
	return copyPage, nil
}

func (s *PageService) Delete(ctx context.Context, id string) error {
	page, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if page.IsSystemPage() {
		return ErrSystemPageDelete
	}

	if err := s.pageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	invalidateRenders(ctx, s.cache, page.StoreID)
	return nil
}

func (s *PageService) ensureSlugAvailable(ctx context.Context, storeID, slug, excludeID string) error {
	exists, err := s.pageRepo.ExistsBySlug(ctx, storeID, slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrSlugTaken, slug)
	}
	return nil
}

func (s *PageService) freeSlug(ctx context.Context, storeID, base string) (string, error) {
	base = utils.GenerateSlug(base)
	candidate := base
	for i := 2; i < 100; i++ {
		exists, err := s.pageRepo.ExistsBySlug(ctx, storeID, candidate, "")
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("%w: no free slug for %s", ErrSlugTaken, base)
}

// normalize prepares a document for persistence: it assigns missing ids,
// upgrades widgets to their current version, sanitizes rich text and rewrites
// literal store values into tokens before validating the whole tree.
func (s *PageService) normalize(page *models.PageDocument, store models.StoreContext) error {
	for si := range page.Sections {
		section := &page.Sections[si]
		if strings.TrimSpace(section.ID) == "" {
			section.ID = uuid.NewString()
		}

		for ri := range section.Rows {
			row := &section.Rows[ri]
			if strings.TrimSpace(row.ID) == "" {
				row.ID = uuid.NewString()
			}

			for wi := range row.Widgets {
				if err := s.normalizeWidget(&row.Widgets[wi], store); err != nil {
					return fmt.Errorf("%w: section %q row %q: %v", ErrValidation, section.ID, row.ID, err)
				}
			}
		}
	}

	if err := page.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (s *PageService) normalizeWidget(widget *models.Widget, store models.StoreContext) error {
	if strings.TrimSpace(widget.ID) == "" {
		widget.ID = uuid.NewString()
	}

	def, err := s.registry.Resolve(widget.Type)
	if err != nil {
		return fmt.Errorf("widget %q: %w", widget.ID, err)
	}
	widget.Type = def.Type
	if widget.Version == 0 {
		widget.Version = def.CurrentVersion
	}

	props, version, err := s.pipeline.Upgrade(def, *widget)
	if err != nil {
		return fmt.Errorf("widget %q: %w", widget.ID, err)
	}

	// Tokenize sees the raw text; sanitizing escapes ' and & in store values.
	def.RewriteText(props, func(text string) string {
		tokenized := tokens.Tokenize(text, store)
		if names := tokens.SingleWordMatches(text, store); len(names) > 0 {
			logger.Warn("Single-word store value rewritten into a token", map[string]interface{}{
				"store_id":  store.StoreID,
				"widget_id": widget.ID,
				"tokens":    names,
			})
		}
		return tokenized
	})
	for _, key := range def.HTMLProps {
		if text, ok := props[key].(string); ok {
			props[key] = validator.SanitizeHTML(text)
		}
	}

	widget.Props = props
	widget.Version = version
	return nil
}
