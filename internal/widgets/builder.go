package widgets

import (
	"fmt"
	"sort"

	"sellusgenie-backend/internal/models"
)

// DefinitionBuilder provides a fluent interface for creating widget definitions.
type DefinitionBuilder struct {
	def        *Definition
	properties map[string]interface{}
	required   []string
	steps      map[int]MigrationStep
	errors     []error
}

// MigrationStep upgrades props from one version to the next.
type MigrationStep func(props map[string]interface{}) (map[string]interface{}, error)

// NewDefinitionBuilder creates a builder for widgetType at version 1.
func NewDefinitionBuilder(widgetType string) *DefinitionBuilder {
	return &DefinitionBuilder{
		def: &Definition{
			Type:            widgetType,
			CurrentVersion:  1,
			DefaultProps:    make(map[string]interface{}),
			VersionDefaults: make(map[int]map[string]interface{}),
		},
		properties: make(map[string]interface{}),
		steps:      make(map[int]MigrationStep),
	}
}

// WithName sets the display name of the widget.
func (b *DefinitionBuilder) WithName(name string) *DefinitionBuilder {
	b.def.Name = name
	return b
}

func (b *DefinitionBuilder) WithDescription(desc string) *DefinitionBuilder {
	b.def.Description = desc
	return b
}

// WithCategory sets the catalog group of the widget.
func (b *DefinitionBuilder) WithCategory(category string) *DefinitionBuilder {
	b.def.Category = category
	return b
}

func (b *DefinitionBuilder) WithIcon(icon string) *DefinitionBuilder {
	b.def.Icon = icon
	return b
}

// Version sets the current schema version.
func (b *DefinitionBuilder) Version(version int) *DefinitionBuilder {
	if version < 1 {
		b.errors = append(b.errors, fmt.Errorf("version must be at least 1, got %d", version))
	}
	b.def.CurrentVersion = version
	return b
}

// AddSchemaField adds a property definition to the widget's props schema.
func (b *DefinitionBuilder) AddSchemaField(name string, fieldSchema map[string]interface{}, required bool) *DefinitionBuilder {
	b.properties[name] = fieldSchema
	if required {
		b.required = append(b.required, name)
	}
	if value, ok := fieldSchema["default"]; ok {
		b.def.DefaultProps[name] = models.CloneValue(value)
	}
	return b
}

// AddStringField is a convenience method for adding a string field.
func (b *DefinitionBuilder) AddStringField(name string, required bool, defaultValue ...string) *DefinitionBuilder {
	field := map[string]interface{}{"type": "string"}
	if len(defaultValue) > 0 {
		field["default"] = defaultValue[0]
	}
	return b.AddSchemaField(name, field, required)
}

// AddNumberField adds an integer field bounded by min and max.
func (b *DefinitionBuilder) AddNumberField(name string, min, max int, defaultValue ...int) *DefinitionBuilder {
	if min > max {
		b.errors = append(b.errors, fmt.Errorf("field %s: min %d greater than max %d", name, min, max))
	}
	field := map[string]interface{}{
		"type":    "integer",
		"minimum": min,
		"maximum": max,
	}
	if len(defaultValue) > 0 {
		field["default"] = defaultValue[0]
	}
	return b.AddSchemaField(name, field, false)
}

func (b *DefinitionBuilder) AddBooleanField(name string, defaultValue bool) *DefinitionBuilder {
	field := map[string]interface{}{
		"type":    "boolean",
		"default": defaultValue,
	}
	return b.AddSchemaField(name, field, false)
}

// AddEnumField adds a string field restricted to options.
func (b *DefinitionBuilder) AddEnumField(name string, options []string, defaultValue ...string) *DefinitionBuilder {
	enum := make([]interface{}, len(options))
	for i, option := range options {
		enum[i] = option
	}
	field := map[string]interface{}{
		"type": "string",
		"enum": enum,
	}
	if len(defaultValue) > 0 {
		field["default"] = defaultValue[0]
	}
	return b.AddSchemaField(name, field, false)
}

// AddArrayField adds an array field whose items follow itemSchema.
func (b *DefinitionBuilder) AddArrayField(name string, itemSchema map[string]interface{}, maxItems int, defaultValue ...[]interface{}) *DefinitionBuilder {
	field := map[string]interface{}{
		"type":  "array",
		"items": itemSchema,
	}
	if maxItems > 0 {
		field["maxItems"] = maxItems
	}
	if len(defaultValue) > 0 {
		field["default"] = defaultValue[0]
	}
	return b.AddSchemaField(name, field, false)
}

// WithVersionDefaults records the default props a historical version shipped with.
func (b *DefinitionBuilder) WithVersionDefaults(version int, props map[string]interface{}) *DefinitionBuilder {
	b.def.VersionDefaults[version] = models.CloneMap(props)
	return b
}

// WithMigration sets a migration that handles any stored version at once.
func (b *DefinitionBuilder) WithMigration(migrate MigrateFunc) *DefinitionBuilder {
	b.def.Migrate = migrate
	return b
}

// WithStep registers the upgrade from version from to from+1. Steps are
// chained when a widget is several versions behind.
func (b *DefinitionBuilder) WithStep(from int, step MigrationStep) *DefinitionBuilder {
	if step == nil {
		b.errors = append(b.errors, fmt.Errorf("migration step from v%d cannot be nil", from))
		return b
	}
	b.steps[from] = step
	return b
}

// Substitutable marks string props that are expanded through token substitution.
func (b *DefinitionBuilder) Substitutable(props ...string) *DefinitionBuilder {
	b.def.SubstitutableProps = append(b.def.SubstitutableProps, props...)
	return b
}

// SubstitutableItems marks string fields of the items of an array prop as
// expanded through token substitution.
func (b *DefinitionBuilder) SubstitutableItems(array string, fields ...string) *DefinitionBuilder {
	if b.def.SubstitutableItems == nil {
		b.def.SubstitutableItems = make(map[string][]string)
	}
	b.def.SubstitutableItems[array] = append(b.def.SubstitutableItems[array], fields...)
	return b
}

// HTML marks props holding rich text.
func (b *DefinitionBuilder) HTML(props ...string) *DefinitionBuilder {
	b.def.HTMLProps = append(b.def.HTMLProps, props...)
	return b
}

// Presentation marks props that inherit from section attributes and theme overrides.
func (b *DefinitionBuilder) Presentation(props ...string) *DefinitionBuilder {
	b.def.PresentationKeys = append(b.def.PresentationKeys, props...)
	return b
}

func (b *DefinitionBuilder) WithLogoSlot() *DefinitionBuilder {
	b.def.LogoSlot = true
	return b
}

// Build constructs the final Definition and returns any accumulated errors.
func (b *DefinitionBuilder) Build() (*Definition, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("builder has %d error(s): %v", len(b.errors), b.errors[0])
	}
	if b.def.Type == "" {
		return nil, fmt.Errorf("widget type is required")
	}

	for _, key := range append(append([]string{}, b.def.SubstitutableProps...), b.def.PresentationKeys...) {
		if _, ok := b.properties[key]; !ok {
			return nil, fmt.Errorf("widget %s: prop %q is not declared in the schema", b.def.Type, key)
		}
	}
	for key := range b.def.SubstitutableItems {
		if _, ok := b.properties[key]; !ok {
			return nil, fmt.Errorf("widget %s: array prop %q is not declared in the schema", b.def.Type, key)
		}
	}

	if len(b.steps) > 0 {
		if b.def.Migrate != nil {
			return nil, fmt.Errorf("widget %s: use either WithMigration or WithStep", b.def.Type)
		}
		for from := 1; from < b.def.CurrentVersion; from++ {
			if _, ok := b.steps[from]; !ok {
				return nil, fmt.Errorf("widget %s: missing migration step from v%d", b.def.Type, from)
			}
		}
		b.def.Migrate = chainSteps(b.steps, b.def.CurrentVersion)
	}

	for from := 1; from < b.def.CurrentVersion; from++ {
		if _, ok := b.def.VersionDefaults[from]; !ok {
			return nil, fmt.Errorf("widget %s: missing defaults for v%d", b.def.Type, from)
		}
	}

	required := append([]string{}, b.required...)
	sort.Strings(required)
	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           b.properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	b.def.Schema = schema

	return b.def, nil
}

// MustBuild builds the definition and panics if there are errors.
// Use this only for the static built-in definitions.
func (b *DefinitionBuilder) MustBuild() *Definition {
	def, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build widget definition: %v", err))
	}
	return def
}

func chainSteps(steps map[int]MigrationStep, current int) MigrateFunc {
	return func(props map[string]interface{}, fromVersion int) (map[string]interface{}, error) {
		if fromVersion < 1 {
			fromVersion = 1
		}
		for version := fromVersion; version < current; version++ {
			step, ok := steps[version]
			if !ok {
				return nil, fmt.Errorf("no migration from v%d", version)
			}
			next, err := step(props)
			if err != nil {
				return nil, fmt.Errorf("v%d -> v%d: %w", version, version+1, err)
			}
			props = next
		}
		return props, nil
	}
}
