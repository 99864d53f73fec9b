package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sellusgenie-backend/internal/models"
)

const (
	ClassicPreset = "classic"
	ModernPreset  = "modern"
	MinimalPreset = "minimal"
)

func defaultPresets() map[string]*Preset {
	return map[string]*Preset{
		ClassicPreset: {
			Slug:        ClassicPreset,
			Name:        "Classic",
			Description: "Warm serif storefront",
			Tokens: models.Theme{
				"primaryColor":    "#1f2937",
				"accentColor":     "#b45309",
				"backgroundColor": "#ffffff",
				"textColor":       "#111827",
				"fontFamily":      "Georgia, serif",
				"sectionPadding":  "48px",
			},
		},
		ModernPreset: {
			Slug:        ModernPreset,
			Name:        "Modern",
			Description: "Bold sans-serif with high contrast",
			Tokens: models.Theme{
				"primaryColor":    "#0f172a",
				"accentColor":     "#2563eb",
				"backgroundColor": "#f8fafc",
				"textColor":       "#0f172a",
				"fontFamily":      "Inter, sans-serif",
				"sectionPadding":  "64px",
			},
		},
		MinimalPreset: {
			Slug:        MinimalPreset,
			Name:        "Minimal",
			Description: "Plain layout with generous whitespace",
			Tokens: models.Theme{
				"primaryColor":    "#000000",
				"accentColor":     "#525252",
				"backgroundColor": "#ffffff",
				"textColor":       "#171717",
				"fontFamily":      "system-ui, sans-serif",
				"sectionPadding":  "80px",
			},
		},
	}
}

// loadPresets reads every *.yaml/*.yml file in dir. File presets named like
// a built-in are merged over it; built-ins are always available.
func loadPresets(dir string) (map[string]*Preset, error) {
	defaults := defaultPresets()

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return defaults, nil
	}

	exists, err := dirExists(dir)
	if err != nil {
		return nil, fmt.Errorf("read theme presets: %w", err)
	}
	if !exists {
		return defaults, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read theme presets: %w", err)
	}

	result := make(map[string]*Preset, len(defaults)+len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		preset, err := readPreset(path)
		if err != nil {
			return nil, err
		}

		if existing, ok := defaults[preset.Slug]; ok {
			preset = mergePreset(existing, preset)
		}
		result[preset.Slug] = preset
	}

	for key, preset := range defaults {
		if _, ok := result[key]; !ok {
			result[key] = preset
		}
	}

	return result, nil
}

func readPreset(path string) (*Preset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme preset %s: %w", path, err)
	}

	var preset Preset
	if err := yaml.Unmarshal(content, &preset); err != nil {
		return nil, fmt.Errorf("parse theme preset %s: %w", path, err)
	}

	preset.Slug = presetSlugFromFile(path)
	if preset.Name == "" {
		preset.Name = humanizeSlug(preset.Slug)
	}
	if preset.Tokens == nil {
		preset.Tokens = models.Theme{}
	}
	return &preset, nil
}

func mergePreset(base, override *Preset) *Preset {
	result := &Preset{
		Slug:        base.Slug,
		Name:        base.Name,
		Description: base.Description,
		Tokens:      base.Tokens.Merge(override.Tokens),
	}
	if override.Name != "" && override.Name != humanizeSlug(override.Slug) {
		result.Name = override.Name
	}
	if override.Description != "" {
		result.Description = override.Description
	}
	return result
}
