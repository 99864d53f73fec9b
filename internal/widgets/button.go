package widgets

func buttonDefinition() *Definition {
	return NewDefinitionBuilder("button").
		WithName("Button").
		WithDescription("Call to action link").
		WithCategory("navigation").
		WithIcon("pointer").
		AddStringField("label", true, "Shop now").
		AddStringField("url", false, "/products").
		AddEnumField("variant", []string{"primary", "secondary", "link"}, "primary").
		AddEnumField("align", alignOptions, "left").
		AddStringField("backgroundColor", false).
		AddStringField("textColor", false).
		Substitutable("label").
		Presentation("backgroundColor", "textColor").
		MustBuild()
}
