package seed

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"sellusgenie-backend/internal/models"
)

//go:embed data/system/*.json
var systemPagesFS embed.FS

// SystemPages returns fresh draft header and footer documents for a new
// store. Their content refers to store values only through tokens.
func SystemPages() ([]*models.PageDocument, error) {
	entries, err := fs.ReadDir(systemPagesFS, "data/system")
	if err != nil {
		return nil, fmt.Errorf("read embedded system pages: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	pages := make([]*models.PageDocument, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		data, err := systemPagesFS.ReadFile("data/system/" + name)
		if err != nil {
			return nil, fmt.Errorf("read embedded system page %s: %w", name, err)
		}

		page, err := parsePageDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("parse embedded system page %s: %w", name, err)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

func parsePageDefinition(data []byte) (*models.PageDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty definition")
	}

	var definition models.CreatePageRequest
	if err := json.Unmarshal(trimmed, &definition); err != nil {
		return nil, err
	}
	if !definition.SystemPageType.Valid() {
		return nil, fmt.Errorf("unknown system page type %q", definition.SystemPageType)
	}

	return &models.PageDocument{
		Name:           definition.Name,
		Status:         models.PageStatusDraft,
		PageType:       models.PageTypeSystem,
		SystemPageType: definition.SystemPageType,
		ThemeOverrides: models.JSONMap(definition.ThemeOverrides),
		Sections:       models.PageSections(definition.Sections),
	}, nil
}
