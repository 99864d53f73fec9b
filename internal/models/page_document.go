package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid page status transition")
	ErrInvalidDocument         = errors.New("invalid page document")
)

type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

type PageType string

const (
	PageTypeContent PageType = "content"
	PageTypeSystem  PageType = "system"
)

// SystemPageType names a reserved structural role. At most one published page
// per store may hold each role.
type SystemPageType string

const (
	SystemPageHeader SystemPageType = "header"
	SystemPageFooter SystemPageType = "footer"
)

// SystemPageTypes lists the reserved roles every store is provisioned with.
var SystemPageTypes = []SystemPageType{SystemPageHeader, SystemPageFooter}

func (t SystemPageType) Valid() bool {
	return t == SystemPageHeader || t == SystemPageFooter
}

type Breakpoint string

const (
	BreakpointSmall  Breakpoint = "sm"
	BreakpointMedium Breakpoint = "md"
	BreakpointLarge  Breakpoint = "lg"
)

const MaxColumns = 12

// ColSpan is the per-breakpoint column weight out of MaxColumns. Zero means unset.
type ColSpan struct {
	Small  int `json:"sm,omitempty"`
	Medium int `json:"md,omitempty"`
	Large  int `json:"lg,omitempty"`
}

type Visibility struct {
	HideOn      []Breakpoint `json:"hideOn,omitempty"`
	PreviewOnly bool         `json:"previewOnly,omitempty"`
}

type Widget struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Version    int         `json:"version"`
	Props      JSONMap     `json:"props"`
	ColSpan    ColSpan     `json:"colSpan"`
	Visibility *Visibility `json:"visibility,omitempty"`
}

type Row struct {
	ID      string   `json:"id"`
	Widgets []Widget `json:"widgets"`
}

type Section struct {
	ID              string `json:"id"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Padding         string `json:"padding,omitempty"`
	Rows            []Row  `json:"rows"`
}

// Attributes returns the section-level presentation values that cascade to widgets.
func (s Section) Attributes() map[string]interface{} {
	attrs := make(map[string]interface{}, 2)
	if strings.TrimSpace(s.BackgroundColor) != "" {
		attrs["backgroundColor"] = s.BackgroundColor
	}
	if strings.TrimSpace(s.Padding) != "" {
		attrs["padding"] = s.Padding
	}
	return attrs
}

type PageSections []Section

func (ps *PageSections) Scan(value interface{}) error {
	if value == nil {
		*ps = PageSections{}
		return nil
	}

	raw, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan PageSections: %w", err)
	}

	return json.Unmarshal(raw, ps)
}

func (ps PageSections) Value() (driver.Value, error) {
	if ps == nil {
		return json.Marshal(PageSections{})
	}
	return json.Marshal(ps)
}

// PageDocument is the persisted section/row/widget tree of one page of a store.
type PageDocument struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StoreID        string         `gorm:"type:uuid;not null;index:idx_page_documents_store" json:"store_id"`
	Name           string         `gorm:"not null" json:"name"`
	Slug           string         `gorm:"index" json:"slug,omitempty"`
	Status         PageStatus     `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`
	PageType       PageType       `gorm:"type:varchar(16);not null;default:'content'" json:"page_type"`
	SystemPageType SystemPageType `gorm:"type:varchar(16);index" json:"system_page_type,omitempty"`
	ThemeOverrides JSONMap        `gorm:"type:jsonb" json:"theme_overrides"`
	Sections       PageSections   `gorm:"type:jsonb" json:"sections"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
}

func (PageDocument) TableName() string {
	return "page_documents"
}

func (p *PageDocument) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *PageDocument) IsPublished() bool {
	return p != nil && p.Status == PageStatusPublished
}

func (p *PageDocument) IsSystemPage() bool {
	return p != nil && p.PageType == PageTypeSystem
}

// TransitionTo moves the document between draft and published. Any other
// transition, including a no-op, is rejected.
func (p *PageDocument) TransitionTo(target PageStatus, now time.Time) error {
	switch {
	case p.Status == PageStatusDraft && target == PageStatusPublished:
		published := now.UTC()
		p.PublishedAt = &published
	case p.Status == PageStatusPublished && target == PageStatusDraft:
		p.PublishedAt = nil
	default:
		return fmt.Errorf("%w: %q -> %q", ErrInvalidStatusTransition, p.Status, target)
	}
	p.Status = target
	return nil
}

// Validate checks the structural invariants of the document tree.
func (p *PageDocument) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if strings.TrimSpace(p.StoreID) == "" {
		return fmt.Errorf("%w: store id is required", ErrInvalidDocument)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}

	switch p.Status {
	case PageStatusDraft, PageStatusPublished:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDocument, p.Status)
	}

	switch p.PageType {
	case PageTypeSystem:
		if !p.SystemPageType.Valid() {
			return fmt.Errorf("%w: system page requires a role, got %q", ErrInvalidDocument, p.SystemPageType)
		}
	case PageTypeContent, "":
		if p.SystemPageType != "" {
			return fmt.Errorf("%w: content pages cannot hold system role %q", ErrInvalidDocument, p.SystemPageType)
		}
	default:
		return fmt.Errorf("%w: unknown page type %q", ErrInvalidDocument, p.PageType)
	}

	sectionIDs := mapset.NewThreadUnsafeSet[string]()
	widgetIDs := mapset.NewThreadUnsafeSet[string]()

	for si, section := range p.Sections {
		if strings.TrimSpace(section.ID) == "" {
			return fmt.Errorf("%w: section %d: id is required", ErrInvalidDocument, si)
		}
		if !sectionIDs.Add(section.ID) {
			return fmt.Errorf("%w: section %d: duplicate id %q", ErrInvalidDocument, si, section.ID)
		}

		rowIDs := mapset.NewThreadUnsafeSet[string]()
		for ri, row := range section.Rows {
			if strings.TrimSpace(row.ID) == "" {
				return fmt.Errorf("%w: section %q row %d: id is required", ErrInvalidDocument, section.ID, ri)
			}
			if !rowIDs.Add(row.ID) {
				return fmt.Errorf("%w: section %q row %d: duplicate id %q", ErrInvalidDocument, section.ID, ri, row.ID)
			}

			for wi, widget := range row.Widgets {
				if err := validateWidget(widget); err != nil {
					return fmt.Errorf("%w: section %q row %q widget %d: %v", ErrInvalidDocument, section.ID, row.ID, wi, err)
				}
				if !widgetIDs.Add(widget.ID) {
					return fmt.Errorf("%w: section %q row %q widget %d: duplicate id %q", ErrInvalidDocument, section.ID, row.ID, wi, widget.ID)
				}
			}
		}
	}

	return nil
}

func validateWidget(widget Widget) error {
	if strings.TrimSpace(widget.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(widget.Type) == "" {
		return errors.New("type is required")
	}
	if widget.Version < 0 {
		return fmt.Errorf("version %d is negative", widget.Version)
	}
	for _, span := range []int{widget.ColSpan.Small, widget.ColSpan.Medium, widget.ColSpan.Large} {
		if span < 0 || span > MaxColumns {
			return fmt.Errorf("column span %d outside 0..%d", span, MaxColumns)
		}
	}
	if widget.Visibility != nil {
		for _, bp := range widget.Visibility.HideOn {
			switch bp {
			case BreakpointSmall, BreakpointMedium, BreakpointLarge:
			default:
				return fmt.Errorf("unknown breakpoint %q", bp)
			}
		}
	}
	return nil
}

// Clone returns a deep copy that shares no mutable state with p.
func (p *PageDocument) Clone() *PageDocument {
	if p == nil {
		return nil
	}
	cloned := *p
	cloned.ThemeOverrides = p.ThemeOverrides.Clone()
	if p.PublishedAt != nil {
		published := *p.PublishedAt
		cloned.PublishedAt = &published
	}
	if p.Sections != nil {
		cloned.Sections = make(PageSections, len(p.Sections))
		for i, section := range p.Sections {
			cloned.Sections[i] = section.clone()
		}
	}
	return &cloned
}

func (s Section) clone() Section {
	cloned := s
	if s.Rows != nil {
		cloned.Rows = make([]Row, len(s.Rows))
		for i, row := range s.Rows {
			clonedRow := row
			if row.Widgets != nil {
				clonedRow.Widgets = make([]Widget, len(row.Widgets))
				for j, widget := range row.Widgets {
					clonedRow.Widgets[j] = widget.Clone()
				}
			}
			cloned.Rows[i] = clonedRow
		}
	}
	return cloned
}

func (w Widget) Clone() Widget {
	cloned := w
	cloned.Props = w.Props.Clone()
	if w.Visibility != nil {
		visibility := *w.Visibility
		visibility.HideOn = append([]Breakpoint(nil), w.Visibility.HideOn...)
		cloned.Visibility = &visibility
	}
	return cloned
}

// PageSelector identifies a document within a store. Exactly one field is expected.
type PageSelector struct {
	Slug           string         `json:"slug,omitempty"`
	Name           string         `json:"name,omitempty"`
	SystemPageType SystemPageType `json:"system_page_type,omitempty"`
}

func (s PageSelector) String() string {
	switch {
	case s.SystemPageType != "":
		return "system:" + string(s.SystemPageType)
	case s.Slug != "":
		return "slug:" + s.Slug
	default:
		return "name:" + s.Name
	}
}
