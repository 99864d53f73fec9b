package widgets

func textDefinition() *Definition {
	return NewDefinitionBuilder("text").
		WithName("Text").
		WithDescription("Rich text paragraph block").
		WithCategory("content").
		WithIcon("type").
		Version(2).
		AddStringField("content", true, "<p>Add your text here</p>").
		AddEnumField("align", alignOptions, "left").
		AddStringField("textColor", false).
		AddStringField("backgroundColor", false).
		AddStringField("padding", false).
		WithVersionDefaults(1, map[string]interface{}{
			"text": "Add your text here",
		}).
		// v1 stored plain text under "text"; v2 stores HTML under "content".
		WithStep(1, func(props map[string]interface{}) (map[string]interface{}, error) {
			if _, ok := props["content"]; !ok {
				props["content"] = paragraph(getString(props, "text"))
			}
			delete(props, "text")
			setDefault(props, "align", "left")
			return props, nil
		}).
		Substitutable("content").
		HTML("content").
		Presentation("textColor", "backgroundColor", "padding").
		MustBuild()
}
