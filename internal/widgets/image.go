package widgets

func imageDefinition() *Definition {
	return NewDefinitionBuilder("image").
		WithName("Image").
		WithDescription("Single image with optional link").
		WithCategory("media").
		WithIcon("image").
		Version(2).
		AddStringField("src", true, "").
		AddStringField("alt", false, "").
		AddStringField("link", false, "").
		AddEnumField("fit", []string{"cover", "contain"}, "cover").
		WithVersionDefaults(1, map[string]interface{}{
			"url": "",
			"alt": "",
		}).
		WithStep(1, func(props map[string]interface{}) (map[string]interface{}, error) {
			rename(props, "url", "src")
			setDefault(props, "src", "")
			setDefault(props, "link", "")
			setDefault(props, "fit", "cover")
			return props, nil
		}).
		Substitutable("alt").
		MustBuild()
}
