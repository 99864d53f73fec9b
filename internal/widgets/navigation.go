package widgets

var navigationLinkSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"label": map[string]interface{}{"type": "string"},
		"url":   map[string]interface{}{"type": "string"},
	},
	"required":             []interface{}{"label", "url"},
	"additionalProperties": false,
}

func navigationDefinition() *Definition {
	return NewDefinitionBuilder("navigation").
		WithName("Navigation").
		WithDescription("Storefront menu links").
		WithCategory("navigation").
		WithIcon("menu").
		AddArrayField("links", navigationLinkSchema, 20, []interface{}{
			map[string]interface{}{"label": "Home", "url": "/"},
			map[string]interface{}{"label": "Shop", "url": "/products"},
			map[string]interface{}{"label": "Contact", "url": "/contact"},
		}).
		AddEnumField("align", alignOptions, "right").
		AddStringField("textColor", false).
		SubstitutableItems("links", "label").
		Presentation("textColor").
		MustBuild()
}
