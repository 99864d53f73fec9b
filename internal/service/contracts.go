package service

import (
	"context"
	"time"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/render"
)

type PageUseCase interface {
	Create(ctx context.Context, storeID string, req models.CreatePageRequest) (*models.PageDocument, error)
	Update(ctx context.Context, id string, req models.UpdatePageRequest) (*models.PageDocument, error)
	Get(ctx context.Context, id string) (*models.PageDocument, error)
	ListByStore(ctx context.Context, storeID string) ([]models.PageDocument, error)
	Publish(ctx context.Context, id string) (*models.PageDocument, error)
	Unpublish(ctx context.Context, id string) (*models.PageDocument, error)
	Duplicate(ctx context.Context, id string) (*models.PageDocument, error)
	Delete(ctx context.Context, id string) error
}

type StoreUseCase interface {
	Provision(ctx context.Context, req models.CreateStoreRequest) (*models.StoreProfile, error)
	Get(ctx context.Context, id string) (*models.StoreProfile, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateStoreRequest) (*models.StoreProfile, error)
}

type StorefrontUseCase interface {
	RenderPage(ctx context.Context, storeID string, selector models.PageSelector) (*render.Tree, error)
	PreviewPage(ctx context.Context, pageID string) (*render.Tree, error)
}

// DocumentSource reads stored page documents.
type DocumentSource interface {
	GetByID(ctx context.Context, id string) (*models.PageDocument, error)
	GetPageDocument(ctx context.Context, storeID string, selector models.PageSelector) (*models.PageDocument, error)
	ListPublishedSystemPages(ctx context.Context, storeID string, role models.SystemPageType) ([]models.PageDocument, error)
}

// StoreSnapshot is everything a render needs about the store besides the page.
type StoreSnapshot struct {
	Context models.StoreContext
	Theme   models.Theme
}

// StoreContextSource resolves the live values of a store for one render.
type StoreContextSource interface {
	GetStoreContext(ctx context.Context, storeID string) (*StoreSnapshot, error)
}

// RenderCache stores public renders per store and selector.
type RenderCache interface {
	GetCachedRender(ctx context.Context, storeID, selector string, dest interface{}) error
	CacheRender(ctx context.Context, storeID, selector string, tree interface{}, ttl time.Duration) error
	InvalidateStoreRenders(ctx context.Context, storeID string) error
}
