package widgets

const defaultFooterText = "© {{current_year}} {{store_name}}. All rights reserved."

func footerTextDefinition() *Definition {
	return NewDefinitionBuilder("footer_text").
		WithName("Footer text").
		WithDescription("Copyright line for the footer").
		WithCategory("brand").
		WithIcon("copyright").
		Version(2).
		AddStringField("content", true, defaultFooterText).
		AddEnumField("align", alignOptions, "center").
		AddBooleanField("showPoweredBy", false).
		AddStringField("textColor", false).
		AddStringField("backgroundColor", false).
		WithVersionDefaults(1, map[string]interface{}{
			"text": defaultFooterText,
		}).
		WithStep(1, func(props map[string]interface{}) (map[string]interface{}, error) {
			rename(props, "text", "content")
			setDefault(props, "content", defaultFooterText)
			setDefault(props, "align", "center")
			setDefault(props, "showPoweredBy", false)
			return props, nil
		}).
		Substitutable("content").
		Presentation("textColor", "backgroundColor").
		MustBuild()
}
