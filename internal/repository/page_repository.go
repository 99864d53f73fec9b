package repository

import (
	"context"

	"sellusgenie-backend/internal/models"

	"gorm.io/gorm"
)

type PageRepository interface {
	Create(ctx context.Context, page *models.PageDocument) error
	Update(ctx context.Context, page *models.PageDocument) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.PageDocument, error)
	GetPageDocument(ctx context.Context, storeID string, selector models.PageSelector) (*models.PageDocument, error)
	ListByStore(ctx context.Context, storeID string) ([]models.PageDocument, error)
	ListPublishedSystemPages(ctx context.Context, storeID string, role models.SystemPageType) ([]models.PageDocument, error)
	ExistsBySlug(ctx context.Context, storeID, slug, excludeID string) (bool, error)
	// Publish saves page as published and, for system pages, demotes every
	// other published page of the same role in the same transaction. It
	// returns the ids of the demoted pages.
	Publish(ctx context.Context, page *models.PageDocument) ([]string, error)
}

type pageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) Create(ctx context.Context, page *models.PageDocument) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *pageRepository) Update(ctx context.Context, page *models.PageDocument) error {
	return r.db.WithContext(ctx).Save(page).Error
}

func (r *pageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.PageDocument{}, "id = ?", id).Error
}

func (r *pageRepository) GetByID(ctx context.Context, id string) (*models.PageDocument, error) {
	var page models.PageDocument
	if err := r.db.WithContext(ctx).First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPageDocument finds a page by slug or name within a store. Published
// pages win over drafts sharing the same selector, then the most recently
// updated one.
func (r *pageRepository) GetPageDocument(ctx context.Context, storeID string, selector models.PageSelector) (*models.PageDocument, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	switch {
	case selector.SystemPageType != "":
		query = query.Where("page_type = ? AND system_page_type = ?", models.PageTypeSystem, selector.SystemPageType)
	case selector.Slug != "":
		query = query.Where("slug = ?", selector.Slug)
	default:
		query = query.Where("name = ?", selector.Name)
	}

	var page models.PageDocument
	err := query.
		Order("CASE WHEN status = 'published' THEN 0 ELSE 1 END, updated_at DESC, id DESC").
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) ListByStore(ctx context.Context, storeID string) ([]models.PageDocument, error) {
	var pages []models.PageDocument
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("page_type DESC").
		Order("name ASC").
		Find(&pages).Error
	return pages, err
}

func (r *pageRepository) ListPublishedSystemPages(ctx context.Context, storeID string, role models.SystemPageType) ([]models.PageDocument, error) {
	var pages []models.PageDocument
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND page_type = ? AND system_page_type = ? AND status = ?",
			storeID, models.PageTypeSystem, role, models.PageStatusPublished).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&pages).Error
	return pages, err
}

func (r *pageRepository) ExistsBySlug(ctx context.Context, storeID, slug, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PageDocument{}).
		Where("store_id = ? AND slug = ?", storeID, slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *pageRepository) Publish(ctx context.Context, page *models.PageDocument) ([]string, error) {
	var demoted []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if page.IsSystemPage() {
			if err := tx.Model(&models.PageDocument{}).
				Where("store_id = ? AND system_page_type = ? AND status = ? AND id <> ?",
					page.StoreID, page.SystemPageType, models.PageStatusPublished, page.ID).
				Pluck("id", &demoted).Error; err != nil {
				return err
			}

			if len(demoted) > 0 {
				if err := tx.Model(&models.PageDocument{}).
					Where("id IN ?", demoted).
					Updates(map[string]interface{}{
						"status":       models.PageStatusDraft,
						"published_at": nil,
					}).Error; err != nil {
					return err
				}
			}
		}

		return tx.Save(page).Error
	})
	if err != nil {
		return nil, err
	}
	return demoted, nil
}
