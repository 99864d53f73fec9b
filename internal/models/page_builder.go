package models

// CreatePageRequest is sent by the builder UI when a new page is created.
type CreatePageRequest struct {
	Name           string                 `json:"name" binding:"required,max=200"`
	Slug           string                 `json:"slug" binding:"omitempty,max=200"`
	PageType       PageType               `json:"page_type" binding:"omitempty,oneof=content system"`
	SystemPageType SystemPageType         `json:"system_page_type" binding:"omitempty,oneof=header footer"`
	ThemeOverrides map[string]interface{} `json:"theme_overrides"`
	Sections       []Section              `json:"sections"`
}

// UpdatePageRequest replaces the document content. Sections, when present,
// replace the whole tree.
type UpdatePageRequest struct {
	Name           *string                `json:"name,omitempty" binding:"omitempty,max=200"`
	Slug           *string                `json:"slug,omitempty" binding:"omitempty,max=200"`
	ThemeOverrides map[string]interface{} `json:"theme_overrides,omitempty"`
	Sections       *[]Section             `json:"sections,omitempty"`
}

type CreateStoreRequest struct {
	Name           string                 `json:"name" binding:"required,max=120"`
	Description    string                 `json:"description"`
	ContactEmail   string                 `json:"contact_email" binding:"omitempty,email"`
	ContactPhone   string                 `json:"contact_phone" binding:"omitempty,max=40"`
	ContactAddress string                 `json:"contact_address"`
	LogoURL        string                 `json:"logo_url" binding:"omitempty,url"`
	ThemePreset    string                 `json:"theme_preset" binding:"omitempty,slug"`
	Theme          map[string]interface{} `json:"theme"`
}

type UpdateStoreRequest struct {
	Name           *string                `json:"name,omitempty" binding:"omitempty,min=1,max=120"`
	Description    *string                `json:"description,omitempty"`
	ContactEmail   *string                `json:"contact_email,omitempty" binding:"omitempty,email"`
	ContactPhone   *string                `json:"contact_phone,omitempty" binding:"omitempty,max=40"`
	ContactAddress *string                `json:"contact_address,omitempty"`
	LogoURL        *string                `json:"logo_url,omitempty" binding:"omitempty,url"`
	ThemePreset    *string                `json:"theme_preset,omitempty" binding:"omitempty,slug"`
	Theme          map[string]interface{} `json:"theme,omitempty"`
}

// WidgetTypeConfig describes a widget type available in the builder catalog.
type WidgetTypeConfig struct {
	Type               string                 `json:"type"`
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	Category           string                 `json:"category"`
	Icon               string                 `json:"icon,omitempty"`
	Version            int                    `json:"version"`
	Schema             map[string]interface{} `json:"schema,omitempty"`
	DefaultProps       map[string]interface{} `json:"default_props"`
	SubstitutableProps []string               `json:"substitutable_props,omitempty"`
	SubstitutableItems map[string][]string    `json:"substitutable_items,omitempty"`
	HasLogoSlot        bool                   `json:"has_logo_slot,omitempty"`
}
