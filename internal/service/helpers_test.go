package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/render"
	"sellusgenie-backend/internal/repository"
	"sellusgenie-backend/internal/theme"
	"sellusgenie-backend/internal/widgets"
	"sellusgenie-backend/pkg/cache"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

// memoryRenderCache is an in-process RenderCache for service tests.
type memoryRenderCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	hits          int
	invalidations int
}

func newMemoryRenderCache() *memoryRenderCache {
	return &memoryRenderCache{entries: make(map[string][]byte)}
}

func (c *memoryRenderCache) GetCachedRender(ctx context.Context, storeID, selector string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[cache.RenderKey(storeID, selector)]
	if !ok {
		return cache.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(data, dest)
}

func (c *memoryRenderCache) CacheRender(ctx context.Context, storeID, selector string, tree interface{}, ttl time.Duration) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cache.RenderKey(storeID, selector)] = data
	return nil
}

func (c *memoryRenderCache) InvalidateStoreRenders(ctx context.Context, storeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := cache.RenderKey(storeID, "")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.invalidations++
	return nil
}

func (c *memoryRenderCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type testEnv struct {
	db          *gorm.DB
	pageRepo    repository.PageRepository
	storeRepo   repository.StoreRepository
	cache       *memoryRenderCache
	stores      *StoreService
	pages       *PageService
	storefront  *StorefrontService
	maintenance *MaintenanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.StoreProfile{}, &models.PageDocument{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	themes, err := theme.NewManager(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create theme manager: %v", err)
	}

	registry := widgets.DefaultRegistry()
	renderCache := newMemoryRenderCache()
	pageRepo := repository.NewPageRepository(db)
	storeRepo := repository.NewStoreRepository(db)

	stores := NewStoreService(storeRepo, themes, renderCache)
	stores.now = func() time.Time { return fixedNow }
	pages := NewPageService(pageRepo, stores, registry, renderCache)
	pages.now = func() time.Time { return fixedNow }

	return &testEnv{
		db:          db,
		pageRepo:    pageRepo,
		storeRepo:   storeRepo,
		cache:       renderCache,
		stores:      stores,
		pages:       pages,
		storefront:  NewStorefrontService(pageRepo, stores, render.New(registry, render.Options{}), renderCache, StorefrontOptions{CacheTTL: time.Minute}),
		maintenance: NewMaintenanceService(pageRepo, storeRepo, stores, registry, renderCache),
	}
}

func (e *testEnv) provision(t *testing.T, name string) *models.StoreProfile {
	t.Helper()
	store, err := e.stores.Provision(context.Background(), models.CreateStoreRequest{
		Name:         name,
		Description:  "Hand-made goods",
		ContactEmail: "hello@" + strings.ToLower(name) + ".shop",
		ContactPhone: "+1 555 0100",
		LogoURL:      "https://cdn.example.com/logo.png",
	})
	if err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}
	return store
}

func widgetByID(tree *render.Tree, id string) *render.Widget {
	for si := range tree.Sections {
		for ri := range tree.Sections[si].Rows {
			for wi := range tree.Sections[si].Rows[ri].Widgets {
				if tree.Sections[si].Rows[ri].Widgets[wi].ID == id {
					return &tree.Sections[si].Rows[ri].Widgets[wi]
				}
			}
		}
	}
	return nil
}

func storedWidget(page *models.PageDocument, id string) *models.Widget {
	for si := range page.Sections {
		for ri := range page.Sections[si].Rows {
			for wi := range page.Sections[si].Rows[ri].Widgets {
				if page.Sections[si].Rows[ri].Widgets[wi].ID == id {
					return &page.Sections[si].Rows[ri].Widgets[wi]
				}
			}
		}
	}
	return nil
}

func contentSection(widgetList ...models.Widget) []models.Section {
	return []models.Section{{Rows: []models.Row{{Widgets: widgetList}}}}
}
