package application

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// objectSchema builds the input schema of a tool.
func objectSchema(properties map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if properties == nil {
		properties = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func stringPropDefault(description, def string) *jsonschema.Schema {
	s := stringProp(description)
	s.Default = rawDefault(def)
	return s
}

func numberProp(description string, def int) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description, Default: rawDefault(def)}
}

func stringArrayProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

func rawDefault(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
