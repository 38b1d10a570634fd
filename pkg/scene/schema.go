package scene

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema reflects the JSON schema of a saved document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	s := reflector.Reflect(new(Document))
	s.Title = "Village Document"
	s.Description = "Generated village layout with its attractors, as saved and reloaded by villageplanner."
	return s
}

// SchemaJSON returns the indented schema document.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
