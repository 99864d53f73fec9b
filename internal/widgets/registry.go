package widgets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/pkg/logger"
)

var (
	ErrWidgetNotFound      = errors.New("widget type not registered")
	ErrDuplicateWidgetType = errors.New("widget type already registered")
	ErrInvalidDefinition   = errors.New("invalid widget definition")
	ErrSchemaViolation     = errors.New("widget props do not match schema")
	ErrMigrationFailed     = errors.New("widget migration failed")
	ErrFutureVersion       = errors.New("widget version is newer than its definition")
)

// MigrateFunc upgrades props stored at fromVersion to the definition's current version.
type MigrateFunc func(props map[string]interface{}, fromVersion int) (map[string]interface{}, error)

// Definition describes one widget type: its prop schema, defaults, version
// history and the props that take part in rendering rules.
type Definition struct {
	Type        string
	Name        string
	Description string
	Category    string
	Icon        string

	CurrentVersion int
	Schema         map[string]interface{}
	DefaultProps   map[string]interface{}
	// VersionDefaults holds the default props of each historical version below CurrentVersion.
	VersionDefaults map[int]map[string]interface{}
	Migrate         MigrateFunc

	// SubstitutableProps are string props expanded through token substitution.
	SubstitutableProps []string
	// SubstitutableItems maps array props to the string fields of their items
	// that are expanded through token substitution, e.g. links -> label.
	SubstitutableItems map[string][]string
	// HTMLProps are sanitized as rich text when the builder saves them.
	HTMLProps []string
	// PresentationKeys take part in the section/theme override chain.
	PresentationKeys []string
	// LogoSlot marks widgets that display the store brand.
	LogoSlot bool

	compiled *jsonschema.Schema
}

// Defaults returns a copy of the current default props.
func (d *Definition) Defaults() map[string]interface{} {
	defaults := models.CloneMap(d.DefaultProps)
	if defaults == nil {
		defaults = map[string]interface{}{}
	}
	return defaults
}

// Config exposes the definition to the builder catalog.
func (d *Definition) Config() models.WidgetTypeConfig {
	return models.WidgetTypeConfig{
		Type:               d.Type,
		Name:               d.Name,
		Description:        d.Description,
		Category:           d.Category,
		Icon:               d.Icon,
		Version:            d.CurrentVersion,
		Schema:             models.CloneMap(d.Schema),
		DefaultProps:       d.Defaults(),
		SubstitutableProps: append([]string(nil), d.SubstitutableProps...),
		SubstitutableItems: cloneItemFields(d.SubstitutableItems),
		HasLogoSlot:        d.LogoSlot,
	}
}

// Validate checks props against the compiled schema of the current version.
func (d *Definition) Validate(props map[string]interface{}) error {
	if d.compiled == nil {
		return fmt.Errorf("%w: schema for %s not compiled", ErrInvalidDefinition, d.Type)
	}
	if err := validateAgainst(d.compiled, props); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaViolation, d.Type, err)
	}
	return nil
}

// Registry maps widget type names to their definitions. It is filled once at
// startup and read concurrently afterwards.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewRegistry creates a registry holding the given definitions. Definitions
// that fail to register are logged and skipped.
func NewRegistry(definitions ...*Definition) *Registry {
	r := &Registry{definitions: make(map[string]*Definition, len(definitions))}
	for _, def := range definitions {
		_ = r.Register(def)
	}
	return r
}

func normalizeType(widgetType string) string {
	return strings.TrimSpace(strings.ToLower(widgetType))
}

// Register adds a definition. The first registration of a type wins; later
// ones and invalid definitions are logged and ignored.
func (r *Registry) Register(def *Definition) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}

	if err := prepareDefinition(def); err != nil {
		fields := map[string]interface{}{}
		if def != nil {
			fields["widget_type"] = def.Type
		}
		logger.Error(err, "Rejected widget definition", fields)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.definitions == nil {
		r.definitions = make(map[string]*Definition)
	}
	if _, exists := r.definitions[def.Type]; exists {
		err := fmt.Errorf("%w: %s", ErrDuplicateWidgetType, def.Type)
		logger.Warn("Ignoring duplicate widget registration", map[string]interface{}{"widget_type": def.Type})
		return err
	}
	r.definitions[def.Type] = def
	return nil
}

func prepareDefinition(def *Definition) error {
	if def == nil {
		return fmt.Errorf("%w: definition is nil", ErrInvalidDefinition)
	}
	def.Type = normalizeType(def.Type)
	if def.Type == "" {
		return fmt.Errorf("%w: type is empty", ErrInvalidDefinition)
	}
	if def.CurrentVersion < 1 {
		return fmt.Errorf("%w: %s: current version must be at least 1", ErrInvalidDefinition, def.Type)
	}
	if def.CurrentVersion > 1 && def.Migrate == nil {
		return fmt.Errorf("%w: %s: version %d requires a migration", ErrInvalidDefinition, def.Type, def.CurrentVersion)
	}

	compiled, err := compileSchema(def.Type, def.Schema)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.Type, err)
	}
	def.compiled = compiled

	if err := def.Validate(def.Defaults()); err != nil {
		return fmt.Errorf("%w: %s: default props: %v", ErrInvalidDefinition, def.Type, err)
	}
	return nil
}

// Resolve returns the definition for widgetType or ErrWidgetNotFound.
func (r *Registry) Resolve(widgetType string) (*Definition, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetType)
	}

	key := normalizeType(widgetType)
	r.mu.RLock()
	def, ok := r.definitions[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetType)
	}
	return def, nil
}

// List returns all definitions ordered by category then type.
func (r *Registry) List() []*Definition {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	result := make([]*Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		result = append(result, def)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Type < result[j].Type
	})
	return result
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

func cloneItemFields(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string][]string, len(src))
	for key, fields := range src {
		dst[key] = append([]string(nil), fields...)
	}
	return dst
}
