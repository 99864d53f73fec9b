package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sellusgenie-backend/internal/models"
)

func writePreset(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write preset: %v", err)
	}
}

func TestNewManagerWithoutDirectoryUsesBuiltins(t *testing.T) {
	manager, err := NewManager(filepath.Join(t.TempDir(), "missing"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(manager.List()); got != 3 {
		t.Fatalf("expected 3 built-in presets, got %d", got)
	}
	if manager.Default().Slug != ClassicPreset {
		t.Fatalf("expected classic default, got %q", manager.Default().Slug)
	}
}

func TestNewManagerMergesFilePresets(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "classic.yaml", "tokens:\n  accentColor: \"#ff0000\"\n")
	writePreset(t, dir, "night-market.yml", "description: Dark stalls\ntokens:\n  backgroundColor: \"#000000\"\n")
	writePreset(t, dir, "notes.txt", "ignored")

	manager, err := NewManager(dir, "night-market")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	classic, ok := manager.Resolve("Classic")
	if !ok {
		t.Fatalf("expected classic preset")
	}
	if classic.Tokens["accentColor"] != "#ff0000" {
		t.Fatalf("expected file token to override, got %v", classic.Tokens["accentColor"])
	}
	if classic.Tokens["primaryColor"] != "#1f2937" {
		t.Fatalf("expected built-in token to survive, got %v", classic.Tokens["primaryColor"])
	}
	if classic.Name != "Classic" {
		t.Fatalf("expected built-in name, got %q", classic.Name)
	}

	night, ok := manager.Resolve("night-market")
	if !ok {
		t.Fatalf("expected file preset")
	}
	if night.Name != "Night Market" {
		t.Fatalf("expected humanized name, got %q", night.Name)
	}
	if manager.Default() != night {
		t.Fatalf("expected configured default preset")
	}
}

func TestNewManagerRejectsUnknownDefault(t *testing.T) {
	_, err := NewManager("", "neon")
	if !errors.Is(err, ErrPresetNotFound) {
		t.Fatalf("expected ErrPresetNotFound, got %v", err)
	}
}

func TestNewManagerRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "broken.yaml", "tokens: [unclosed")

	if _, err := NewManager(dir, ""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStoreTheme(t *testing.T) {
	manager, err := NewManager("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		profile *models.StoreProfile
		key     string
		want    interface{}
	}{
		{name: "nil profile", profile: nil, key: "fontFamily", want: "Georgia, serif"},
		{name: "named preset", profile: &models.StoreProfile{ThemePreset: "modern"}, key: "accentColor", want: "#2563eb"},
		{name: "unknown preset", profile: &models.StoreProfile{ThemePreset: "neon"}, key: "accentColor", want: "#b45309"},
		{name: "store override", profile: &models.StoreProfile{ThemePreset: "minimal", Theme: models.JSONMap{"accentColor": "#00ff00"}}, key: "accentColor", want: "#00ff00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := manager.StoreTheme(tt.profile)
			if theme[tt.key] != tt.want {
				t.Fatalf("expected %s=%v, got %v", tt.key, tt.want, theme[tt.key])
			}
		})
	}

	classic, _ := manager.Resolve(ClassicPreset)
	manager.StoreTheme(&models.StoreProfile{Theme: models.JSONMap{"accentColor": "#123456"}})
	if classic.Tokens["accentColor"] != "#b45309" {
		t.Fatalf("store theme must not mutate presets")
	}
}
