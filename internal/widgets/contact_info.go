package widgets

func contactInfoDefinition() *Definition {
	return NewDefinitionBuilder("contact_info").
		WithName("Contact info").
		WithDescription("Store contact details").
		WithCategory("brand").
		WithIcon("mail").
		AddStringField("heading", false, "Contact us").
		AddStringField("content", true, "{{contact_info}}").
		AddEnumField("layout", []string{"stacked", "inline"}, "stacked").
		AddEnumField("align", alignOptions, "left").
		AddStringField("textColor", false).
		Substitutable("heading", "content").
		Presentation("textColor").
		MustBuild()
}
