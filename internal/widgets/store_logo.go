package widgets

var logoSizes = []string{"small", "medium", "large"}

// storeLogoDefinition renders the store brand. Whether an image or the store
// name is shown is decided at render time from the page's useStoreLogo flag.
func storeLogoDefinition() *Definition {
	return NewDefinitionBuilder("store_logo").
		WithName("Store logo").
		WithDescription("Store logo image or name").
		WithCategory("brand").
		WithIcon("badge").
		Version(2).
		AddEnumField("size", logoSizes, "medium").
		AddStringField("linkUrl", false, "/").
		AddStringField("altText", false, "{{store_name}}").
		AddBooleanField("showName", false).
		WithVersionDefaults(1, map[string]interface{}{
			"showName": false,
			"height":   40,
		}).
		// v1 sized the logo in pixels; v2 uses named sizes.
		WithStep(1, func(props map[string]interface{}) (map[string]interface{}, error) {
			if _, ok := props["size"]; !ok {
				height := getInt(props, "height", 40)
				switch {
				case height <= 32:
					props["size"] = "small"
				case height <= 56:
					props["size"] = "medium"
				default:
					props["size"] = "large"
				}
			}
			delete(props, "height")
			setDefault(props, "linkUrl", "/")
			setDefault(props, "altText", "{{store_name}}")
			setDefault(props, "showName", false)
			return props, nil
		}).
		Substitutable("altText").
		WithLogoSlot().
		MustBuild()
}
