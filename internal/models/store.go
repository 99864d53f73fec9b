package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreProfile is the store-level record the storefront draws live values from.
type StoreProfile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string  `gorm:"not null" json:"name"`
	Description    string  `gorm:"type:text" json:"description"`
	ContactEmail   string  `json:"contact_email"`
	ContactPhone   string  `json:"contact_phone"`
	ContactAddress string  `gorm:"type:text" json:"contact_address"`
	LogoURL        string  `json:"logo_url"`
	ThemePreset    string  `json:"theme_preset"`
	Theme          JSONMap `gorm:"type:jsonb" json:"theme"`
}

func (StoreProfile) TableName() string {
	return "store_profiles"
}

func (s *StoreProfile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Context snapshots the live values used for token substitution.
func (s *StoreProfile) Context(now time.Time) StoreContext {
	if s == nil {
		return StoreContext{CurrentYear: now.Year()}
	}
	return StoreContext{
		StoreID:          s.ID,
		StoreName:        s.Name,
		StoreDescription: s.Description,
		ContactEmail:     s.ContactEmail,
		ContactPhone:     s.ContactPhone,
		ContactAddress:   s.ContactAddress,
		LogoURL:          s.LogoURL,
		CurrentYear:      now.Year(),
	}
}

// StoreContext carries the read-only values available to one render call.
type StoreContext struct {
	StoreID          string `json:"store_id"`
	StoreName        string `json:"store_name"`
	StoreDescription string `json:"store_description"`
	ContactEmail     string `json:"contact_email"`
	ContactPhone     string `json:"contact_phone"`
	ContactAddress   string `json:"contact_address"`
	LogoURL          string `json:"logo_url"`
	CurrentYear      int    `json:"current_year"`
}

// Theme is a flat set of presentation tokens such as colors and spacing.
type Theme map[string]interface{}

// Merge layers override on top of t and returns a new theme.
func (t Theme) Merge(override map[string]interface{}) Theme {
	merged := make(Theme, len(t)+len(override))
	for key, value := range t {
		merged[key] = CloneValue(value)
	}
	for key, value := range override {
		merged[key] = CloneValue(value)
	}
	return merged
}
