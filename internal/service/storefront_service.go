package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/render"
	"sellusgenie-backend/pkg/cache"
	"sellusgenie-backend/pkg/logger"
)

type StorefrontOptions struct {
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

type StorefrontService struct {
	documents DocumentSource
	stores    StoreContextSource
	renderer  *render.Renderer
	cache     RenderCache
	opts      StorefrontOptions
}

func NewStorefrontService(documents DocumentSource, stores StoreContextSource, renderer *render.Renderer, renderCache RenderCache, opts StorefrontOptions) *StorefrontService {
	initMetrics()
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 3 * time.Second
	}
	return &StorefrontService{
		documents: documents,
		stores:    stores,
		renderer:  renderer,
		cache:     renderCache,
		opts:      opts,
	}
}

// RenderPage renders a page of a store for the public storefront. Failures to
// fetch the page or the store come back as *RenderFailure.
func (s *StorefrontService) RenderPage(ctx context.Context, storeID string, selector models.PageSelector) (*render.Tree, error) {
	started := time.Now()
	defer func() {
		renderDuration.WithLabelValues(string(render.ModePublic)).Observe(time.Since(started).Seconds())
	}()

	key := selector.String()
	ctx = logger.ContextWithFields(ctx, map[string]interface{}{"store_id": storeID, "selector": key})

	if err := validateSelector(storeID, selector); err != nil {
		renderTotal.WithLabelValues(string(render.ModePublic), "error").Inc()
		return nil, &RenderFailure{Kind: FailureBadSelector, StoreID: storeID, Selector: key, Err: err}
	}

	if tree, ok := s.cached(ctx, storeID, key); ok {
		renderTotal.WithLabelValues(string(render.ModePublic), "cache_hit").Inc()
		return tree, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	snapshot, err := s.storeSnapshot(fetchCtx, storeID, key)
	if err != nil {
		renderTotal.WithLabelValues(string(render.ModePublic), "error").Inc()
		return nil, err
	}

	doc, err := s.findDocument(fetchCtx, storeID, selector)
	if err != nil {
		renderTotal.WithLabelValues(string(render.ModePublic), "error").Inc()
		return nil, fetchFailure(err, storeID, key, FailurePageNotFound)
	}

	tree := s.renderer.RenderPublic(ctx, doc, snapshot.Context, snapshot.Theme)
	if tree.Fallback {
		renderTotal.WithLabelValues(string(render.ModePublic), "fallback").Inc()
		return tree, nil
	}

	renderTotal.WithLabelValues(string(render.ModePublic), "rendered").Inc()
	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.CacheRender(ctx, storeID, key, tree, s.opts.CacheTTL); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to cache render")
		}
	}
	return tree, nil
}

// PreviewPage renders any page, drafts included, for the builder canvas.
func (s *StorefrontService) PreviewPage(ctx context.Context, pageID string) (*render.Tree, error) {
	started := time.Now()
	defer func() {
		renderDuration.WithLabelValues(string(render.ModePreview)).Observe(time.Since(started).Seconds())
	}()

	ctx = logger.ContextWithFields(ctx, map[string]interface{}{"page_id": pageID})
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	doc, err := s.documents.GetByID(fetchCtx, pageID)
	if err != nil {
		renderTotal.WithLabelValues(string(render.ModePreview), "error").Inc()
		return nil, fetchFailure(err, "", "id:"+pageID, FailurePageNotFound)
	}

	snapshot, err := s.storeSnapshot(fetchCtx, doc.StoreID, "id:"+pageID)
	if err != nil {
		renderTotal.WithLabelValues(string(render.ModePreview), "error").Inc()
		return nil, err
	}

	tree := s.renderer.RenderPreview(ctx, doc, snapshot.Context, snapshot.Theme)
	renderTotal.WithLabelValues(string(render.ModePreview), "rendered").Inc()
	return tree, nil
}

// InvalidateStore drops cached public renders of a store.
func (s *StorefrontService) InvalidateStore(ctx context.Context, storeID string) {
	invalidateRenders(ctx, s.cache, storeID)
}

func (s *StorefrontService) cached(ctx context.Context, storeID, key string) (*render.Tree, bool) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return nil, false
	}

	var tree render.Tree
	err := s.cache.GetCachedRender(ctx, storeID, key, &tree)
	switch {
	case err == nil:
		return &tree, true
	case errors.Is(err, cache.ErrCacheMiss), errors.Is(err, cache.ErrCacheDisabled):
	default:
		logger.FromContext(ctx).WithError(err).Warn("Render cache lookup failed")
	}
	return nil, false
}

func (s *StorefrontService) storeSnapshot(ctx context.Context, storeID, selector string) (*StoreSnapshot, error) {
	snapshot, err := s.stores.GetStoreContext(ctx, storeID)
	if err != nil {
		return nil, fetchFailure(err, storeID, selector, FailureStoreNotFound)
	}
	return snapshot, nil
}

func (s *StorefrontService) findDocument(ctx context.Context, storeID string, selector models.PageSelector) (*models.PageDocument, error) {
	if selector.SystemPageType == "" {
		return s.documents.GetPageDocument(ctx, storeID, selector)
	}

	candidates, err := s.documents.ListPublishedSystemPages(ctx, storeID, selector.SystemPageType)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrPageNotFound
	}
	return pickSystemPage(ctx, candidates), nil
}

// pickSystemPage resolves more than one published page holding the same role
// by taking the most recently updated one, ties broken by the larger id.
func pickSystemPage(ctx context.Context, candidates []models.PageDocument) *models.PageDocument {
	sorted := make([]models.PageDocument, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].UpdatedAt.Equal(sorted[j].UpdatedAt) {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	chosen := sorted[0]
	if len(sorted) > 1 {
		ids := make([]string, len(sorted))
		for i, candidate := range sorted {
			ids[i] = candidate.ID
		}
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"system_page_type": chosen.SystemPageType,
			"candidates":       strings.Join(ids, ","),
			"chosen":           chosen.ID,
		}).Warn("Multiple published system pages for one role")
	}
	return &chosen
}

func validateSelector(storeID string, selector models.PageSelector) error {
	if strings.TrimSpace(storeID) == "" {
		return errors.New("store id is required")
	}
	set := 0
	for _, value := range []string{selector.Slug, selector.Name, string(selector.SystemPageType)} {
		if strings.TrimSpace(value) != "" {
			set++
		}
	}
	if set != 1 {
		return errors.New("exactly one of slug, name or system page type is required")
	}
	if selector.SystemPageType != "" && !selector.SystemPageType.Valid() {
		return errors.New("unknown system page type")
	}
	return nil
}

// fetchFailure classifies a fetch error: missing records become notFound,
// anything else (timeouts, connection errors) is a fetch failure.
func fetchFailure(err error, storeID, selector string, notFound RenderFailureKind) error {
	var failure *RenderFailure
	if errors.As(err, &failure) {
		return failure
	}

	kind := FailureFetch
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrPageNotFound):
		kind = notFound
	case errors.Is(err, ErrStoreNotFound):
		kind = FailureStoreNotFound
	}
	return &RenderFailure{Kind: kind, StoreID: storeID, Selector: selector, Err: err}
}

func invalidateRenders(ctx context.Context, renderCache RenderCache, storeID string) {
	if renderCache == nil || storeID == "" {
		return
	}
	if err := renderCache.InvalidateStoreRenders(ctx, storeID); err != nil {
		logger.Error(err, "Failed to invalidate store renders", map[string]interface{}{"store_id": storeID})
	}
}
