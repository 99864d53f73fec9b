package widgets

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(widgetType string, schema map[string]interface{}) (*jsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("schema is empty")
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	compiled, err := jsonschema.CompileString("widget."+widgetType+".schema.json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// validateAgainst round-trips props through JSON so Go-typed values (int,
// []string, JSONMap) are checked in the same shape they are stored in.
func validateAgainst(schema *jsonschema.Schema, props map[string]interface{}) error {
	if props == nil {
		props = map[string]interface{}{}
	}

	payload, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode props: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode props: %w", err)
	}

	return schema.Validate(decoded)
}

// Validate checks props against the schema of the registered widgetType.
func (r *Registry) Validate(widgetType string, props map[string]interface{}) error {
	def, err := r.Resolve(widgetType)
	if err != nil {
		return err
	}
	return def.Validate(props)
}
