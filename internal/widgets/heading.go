package widgets

var headingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

func headingDefinition() *Definition {
	return NewDefinitionBuilder("heading").
		WithName("Heading").
		WithDescription("Section title").
		WithCategory("content").
		WithIcon("heading").
		AddStringField("text", true, "Heading").
		AddEnumField("level", headingLevels, "h2").
		AddEnumField("align", alignOptions, "left").
		AddStringField("textColor", false).
		Substitutable("text").
		Presentation("textColor").
		MustBuild()
}
