package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"sellusgenie-backend/internal/models"
)

var ErrPresetNotFound = errors.New("theme preset not found")

// Preset is a named set of presentation tokens a store can start from.
type Preset struct {
	Slug        string       `json:"slug" yaml:"-"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Tokens      models.Theme `json:"tokens" yaml:"tokens"`
}

type Manager struct {
	baseDir     string
	defaultSlug string

	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewManager loads presets from baseDir over the built-in ones. A missing
// directory leaves only the built-ins.
func NewManager(baseDir, defaultSlug string) (*Manager, error) {
	presets, err := loadPresets(baseDir)
	if err != nil {
		return nil, err
	}

	slug := normalizeSlug(defaultSlug)
	if slug == "" {
		slug = ClassicPreset
	}
	if _, ok := presets[slug]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrPresetNotFound, slug)
	}

	return &Manager{baseDir: baseDir, defaultSlug: slug, presets: presets}, nil
}

// Reload re-reads the presets directory.
func (m *Manager) Reload() error {
	presets, err := loadPresets(m.baseDir)
	if err != nil {
		return err
	}
	if _, ok := presets[m.defaultSlug]; !ok {
		return fmt.Errorf("%w: default %q", ErrPresetNotFound, m.defaultSlug)
	}

	m.mu.Lock()
	m.presets = presets
	m.mu.Unlock()
	return nil
}

func (m *Manager) List() []*Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Preset, 0, len(m.presets))
	for _, preset := range m.presets {
		list = append(list, preset)
	}

	sort.Slice(list, func(i, j int) bool {
		left := strings.ToLower(list[i].Name)
		right := strings.ToLower(list[j].Name)
		if left == right {
			return list[i].Slug < list[j].Slug
		}
		return left < right
	})

	return list
}

func (m *Manager) Resolve(slug string) (*Preset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	preset, ok := m.presets[normalizeSlug(slug)]
	return preset, ok
}

func (m *Manager) Default() *Preset {
	preset, _ := m.Resolve(m.defaultSlug)
	return preset
}

// StoreTheme resolves the theme of a store: its preset, or the default preset
// when unset or unknown, with the store's own token overrides on top.
func (m *Manager) StoreTheme(profile *models.StoreProfile) models.Theme {
	preset := m.Default()
	var overrides map[string]interface{}
	if profile != nil {
		if p, ok := m.Resolve(profile.ThemePreset); ok {
			preset = p
		}
		overrides = profile.Theme
	}

	base := models.Theme{}
	if preset != nil {
		base = preset.Tokens
	}
	return base.Merge(overrides)
}

func normalizeSlug(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func humanizeSlug(value string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "Theme"
	}

	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		switch r {
		case '-', '_', ' ':
			return true
		default:
			return false
		}
	})

	if len(parts) == 0 {
		parts = []string{cleaned}
	}

	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}

	return strings.Join(parts, " ")
}

func presetSlugFromFile(path string) string {
	base := filepath.Base(path)
	return normalizeSlug(strings.TrimSuffix(base, filepath.Ext(base)))
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, errors.New("themes path must be a directory")
	}
	return true, nil
}
