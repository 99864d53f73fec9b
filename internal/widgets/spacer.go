package widgets

func spacerDefinition() *Definition {
	return NewDefinitionBuilder("spacer").
		WithName("Spacer").
		WithDescription("Vertical whitespace").
		WithCategory("layout").
		WithIcon("move-vertical").
		AddNumberField("height", 0, 400, 32).
		AddStringField("backgroundColor", false).
		Presentation("backgroundColor").
		MustBuild()
}
