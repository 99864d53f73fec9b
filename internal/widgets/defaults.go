package widgets

// Builtins returns fresh copies of the built-in widget definitions.
func Builtins() []*Definition {
	return []*Definition{
		textDefinition(),
		headingDefinition(),
		imageDefinition(),
		storeLogoDefinition(),
		navigationDefinition(),
		buttonDefinition(),
		footerTextDefinition(),
		contactInfoDefinition(),
		spacerDefinition(),
	}
}

// DefaultRegistry builds a registry holding every built-in widget type.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtins()...)
}
