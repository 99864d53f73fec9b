package repository

import (
	"context"

	"sellusgenie-backend/internal/models"

	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, store *models.StoreProfile) error
	Update(ctx context.Context, store *models.StoreProfile) error
	GetByID(ctx context.Context, id string) (*models.StoreProfile, error)
	ListIDs(ctx context.Context) ([]string, error)
	// CreateWithPages stores a profile and its initial pages atomically.
	CreateWithPages(ctx context.Context, store *models.StoreProfile, pages []*models.PageDocument) error
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *models.StoreProfile) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepository) Update(ctx context.Context, store *models.StoreProfile) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*models.StoreProfile, error) {
	var store models.StoreProfile
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.StoreProfile{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *storeRepository) CreateWithPages(ctx context.Context, store *models.StoreProfile, pages []*models.PageDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(store).Error; err != nil {
			return err
		}
		for _, page := range pages {
			page.StoreID = store.ID
			if err := tx.Create(page).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
