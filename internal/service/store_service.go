package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/repository"
	"sellusgenie-backend/internal/seed"
	"sellusgenie-backend/internal/theme"
	"sellusgenie-backend/pkg/logger"
)

type StoreService struct {
	storeRepo repository.StoreRepository
	themes    *theme.Manager
	cache     RenderCache
	now       func() time.Time
}

func NewStoreService(storeRepo repository.StoreRepository, themes *theme.Manager, renderCache RenderCache) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		themes:    themes,
		cache:     renderCache,
		now:       time.Now,
	}
}

// Provision creates a store profile with its header and footer pages. The
// system pages are published immediately and hold only token content.
func (s *StoreService) Provision(ctx context.Context, req models.CreateStoreRequest) (*models.StoreProfile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("store name is required")
	}
	if preset := strings.TrimSpace(req.ThemePreset); preset != "" {
		if _, ok := s.themes.Resolve(preset); !ok {
			return nil, validationError("unknown theme preset %q", preset)
		}
	}

	profile := &models.StoreProfile{
		Name:           name,
		Description:    strings.TrimSpace(req.Description),
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		ContactPhone:   strings.TrimSpace(req.ContactPhone),
		ContactAddress: strings.TrimSpace(req.ContactAddress),
		LogoURL:        strings.TrimSpace(req.LogoURL),
		ThemePreset:    strings.ToLower(strings.TrimSpace(req.ThemePreset)),
		Theme:          models.JSONMap(models.CloneMap(req.Theme)),
	}

	now := s.now()
	pages, err := seed.SystemPages()
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if err := page.TransitionTo(models.PageStatusPublished, now); err != nil {
			return nil, fmt.Errorf("failed to publish %s page: %w", page.SystemPageType, err)
		}
	}

	if err := s.storeRepo.CreateWithPages(ctx, profile, pages); err != nil {
		return nil, fmt.Errorf("failed to provision store: %w", err)
	}

	logger.Info("Store provisioned", map[string]interface{}{
		"store_id": profile.ID,
		"pages":    len(pages),
	})
	return profile, nil
}

func (s *StoreService) Get(ctx context.Context, id string) (*models.StoreProfile, error) {
	profile, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile changes store-level values. Pages reference these values
// through tokens, so no page needs rewriting; cached renders are dropped.
func (s *StoreService) UpdateProfile(ctx context.Context, id string, req models.UpdateStoreRequest) (*models.StoreProfile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("store name cannot be empty")
		}
		profile.Name = name
	}
	if req.Description != nil {
		profile.Description = strings.TrimSpace(*req.Description)
	}
	if req.ContactEmail != nil {
		profile.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.ContactPhone != nil {
		profile.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.ContactAddress != nil {
		profile.ContactAddress = strings.TrimSpace(*req.ContactAddress)
	}
	if req.LogoURL != nil {
		profile.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if req.ThemePreset != nil {
		preset := strings.ToLower(strings.TrimSpace(*req.ThemePreset))
		if preset != "" {
			if _, ok := s.themes.Resolve(preset); !ok {
				return nil, validationError("unknown theme preset %q", preset)
			}
		}
		profile.ThemePreset = preset
	}
	if req.Theme != nil {
		profile.Theme = models.JSONMap(models.CloneMap(req.Theme))
	}

	if err := s.storeRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	invalidateRenders(ctx, s.cache, profile.ID)
	return profile, nil
}

// Theme resolves the presentation tokens of a store.
func (s *StoreService) Theme(profile *models.StoreProfile) models.Theme {
	return s.themes.StoreTheme(profile)
}

// GetStoreContext snapshots the live store values for one render.
func (s *StoreService) GetStoreContext(ctx context.Context, storeID string) (*StoreSnapshot, error) {
	profile, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}

	return &StoreSnapshot{
		Context: profile.Context(s.now()),
		Theme:   s.Theme(profile),
	}, nil
}
