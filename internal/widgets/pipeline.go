package widgets

import (
	"fmt"

	"sellusgenie-backend/internal/models"
)

// Outcome records how the props of one widget were obtained.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeMigrated  Outcome = "migrated"
	OutcomeDefaulted Outcome = "defaulted"
	OutcomeDowngrade Outcome = "downgrade"
)

// Result is the outcome of resolving one widget's props for rendering.
// Err explains any degradation and is nil for unchanged and migrated props.
type Result struct {
	Props   map[string]interface{}
	Version int
	Outcome Outcome
	Err     error
}

// Pipeline brings stored widget props to the shape of their current definition.
type Pipeline struct {
	registry *Registry
}

func NewPipeline(registry *Registry) *Pipeline {
	return &Pipeline{registry: registry}
}

// StoredVersion returns the effective version of a stored widget. Widgets
// persisted before versioning carry zero and are treated as version 1.
func StoredVersion(widget models.Widget) int {
	if widget.Version < 1 {
		return 1
	}
	return widget.Version
}

// Resolve is the lenient render path. It never fails: migration errors,
// panics and schema violations degrade to the definition's default props.
func (p *Pipeline) Resolve(def *Definition, widget models.Widget) Result {
	stored := StoredVersion(widget)
	props := map[string]interface{}(widget.Props.Clone())
	if props == nil {
		props = map[string]interface{}{}
	}

	switch {
	case stored > def.CurrentVersion:
		return Result{
			Props:   props,
			Version: stored,
			Outcome: OutcomeDowngrade,
			Err:     fmt.Errorf("%w: %s stored at v%d, definition at v%d", ErrFutureVersion, def.Type, stored, def.CurrentVersion),
		}

	case stored == def.CurrentVersion:
		if err := def.Validate(props); err != nil {
			return defaulted(def, err)
		}
		return Result{Props: props, Version: stored, Outcome: OutcomeUnchanged}

	default:
		migrated, err := runMigration(def, props, stored)
		if err != nil {
			return defaulted(def, err)
		}
		if err := def.Validate(migrated); err != nil {
			return defaulted(def, err)
		}
		return Result{Props: migrated, Version: def.CurrentVersion, Outcome: OutcomeMigrated}
	}
}

func defaulted(def *Definition, err error) Result {
	return Result{
		Props:   def.Defaults(),
		Version: def.CurrentVersion,
		Outcome: OutcomeDefaulted,
		Err:     err,
	}
}

// Upgrade is the strict save path: it returns props at the current version
// or an error, never defaults.
func (p *Pipeline) Upgrade(def *Definition, widget models.Widget) (map[string]interface{}, int, error) {
	stored := StoredVersion(widget)
	props := map[string]interface{}(widget.Props.Clone())
	if props == nil {
		props = map[string]interface{}{}
	}

	if stored > def.CurrentVersion {
		return nil, stored, fmt.Errorf("%w: %s stored at v%d, definition at v%d", ErrFutureVersion, def.Type, stored, def.CurrentVersion)
	}

	if stored < def.CurrentVersion {
		migrated, err := runMigration(def, props, stored)
		if err != nil {
			return nil, stored, err
		}
		props = migrated
	}

	if err := def.Validate(props); err != nil {
		return nil, stored, err
	}
	return props, def.CurrentVersion, nil
}

// UpgradeDocument strictly upgrades every widget of doc in place. It returns
// the number of widgets whose version changed. On error doc is left untouched.
func (p *Pipeline) UpgradeDocument(doc *models.PageDocument) (int, error) {
	if doc == nil {
		return 0, nil
	}

	working := doc.Clone()
	changed := 0
	for si := range working.Sections {
		section := &working.Sections[si]
		for ri := range section.Rows {
			row := &section.Rows[ri]
			for wi := range row.Widgets {
				widget := &row.Widgets[wi]
				def, err := p.registry.Resolve(widget.Type)
				if err != nil {
					return 0, fmt.Errorf("widget %s: %w", widget.ID, err)
				}
				if widget.Version == def.CurrentVersion {
					continue
				}
				props, version, err := p.Upgrade(def, *widget)
				if err != nil {
					return 0, fmt.Errorf("widget %s: %w", widget.ID, err)
				}
				widget.Props = props
				widget.Version = version
				changed++
			}
		}
	}

	if changed > 0 {
		doc.Sections = working.Sections
	}
	return changed, nil
}

func runMigration(def *Definition, props map[string]interface{}, from int) (migrated map[string]interface{}, err error) {
	if def.Migrate == nil {
		return nil, fmt.Errorf("%w: %s has no migration from v%d", ErrMigrationFailed, def.Type, from)
	}

	defer func() {
		if r := recover(); r != nil {
			migrated = nil
			err = fmt.Errorf("%w: %s from v%d: panic: %v", ErrMigrationFailed, def.Type, from, r)
		}
	}()

	migrated, err = def.Migrate(props, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %s from v%d: %v", ErrMigrationFailed, def.Type, from, err)
	}
	if migrated == nil {
		return nil, fmt.Errorf("%w: %s from v%d returned no props", ErrMigrationFailed, def.Type, from)
	}
	return migrated, nil
}
