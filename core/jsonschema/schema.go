package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type names accepted in the "type" keyword.
const (
	TypeObject  = "object"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Schema is the JSON-schema-like description of a tool's parameters or of
// a single property. Only the keywords understood by chat-completion
// providers are modelled.
type Schema struct {
	// Type specifies the data type ("object", "string", "array", ...).
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	// Properties lists the named members of an object schema.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Required names the properties that must be present.
	Required []string `json:"required,omitempty"`
	// Enum restricts a string property to a fixed set of values.
	Enum []string `json:"enum,omitempty"`
	// Items describes the elements of an array schema.
	Items *Schema `json:"items,omitempty"`

	// raw is the verbatim document of a schema built by FromJSON.
	raw json.RawMessage
}

// FromJSON wraps a schema document written elsewhere, such as the input
// schema advertised by a remote tool server. The document is kept verbatim:
// MarshalJSON returns it and Compile validates against it, so keywords the
// struct does not model (anyOf, type arrays, numeric enums, bounds) are
// preserved. The modelled fields are filled in, recursively for properties
// and items, wherever the document has the shape the struct models.
func FromJSON(document []byte) (*Schema, error) {
	var keywords map[string]json.RawMessage
	if err := json.Unmarshal(document, &keywords); err != nil {
		return nil, fmt.Errorf("schema must be a JSON object: %w", err)
	}
	if keywords == nil {
		return nil, fmt.Errorf("schema must be a JSON object, got %s", document)
	}

	schema := &Schema{raw: bytes.Clone(document)}
	// Mismatched shapes are left to the raw document.
	if value, ok := decodeKeyword[string](keywords, "type"); ok {
		schema.Type = value
	}
	if value, ok := decodeKeyword[string](keywords, "description"); ok {
		schema.Description = value
	}
	if value, ok := decodeKeyword[[]string](keywords, "required"); ok {
		schema.Required = value
	}
	if value, ok := decodeKeyword[[]string](keywords, "enum"); ok {
		schema.Enum = value
	}
	if properties, ok := decodeKeyword[map[string]json.RawMessage](keywords, "properties"); ok {
		schema.Properties = make(map[string]*Schema, len(properties))
		for name, property := range properties {
			if nested, err := FromJSON(property); err == nil {
				schema.Properties[name] = nested
			}
		}
	}
	if items, ok := keywords["items"]; ok {
		if nested, err := FromJSON(items); err == nil {
			schema.Items = nested
		}
	}
	return schema, nil
}

func decodeKeyword[T any](keywords map[string]json.RawMessage, name string) (T, bool) {
	var value T
	encoded, exists := keywords[name]
	if !exists {
		return value, false
	}
	if err := json.Unmarshal(encoded, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// MarshalJSON encodes the modelled keywords, or the verbatim document of a
// schema built by FromJSON.
func (schema Schema) MarshalJSON() ([]byte, error) {
	if schema.raw != nil {
		return schema.raw, nil
	}
	type plain Schema
	return json.Marshal(plain(schema))
}

// Object builds an object schema from its properties. The trailing names
// are marked as required.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       TypeObject,
		Properties: properties,
		Required:   required,
	}
}

// String builds a string property.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Number builds a floating point property.
func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

// Integer builds an integer property.
func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

// Boolean builds a boolean property.
func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// Array builds an array property whose elements follow items.
func Array(items *Schema, description string) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}

// WithEnum restricts the schema to the given values and returns it, so it
// can be chained on a builder call:
//
//	jsonschema.String("temperature unit").WithEnum("celsius", "fahrenheit")
func (schema *Schema) WithEnum(values ...string) *Schema {
	schema.Enum = append([]string(nil), values...)
	return schema
}

// Clone returns a deep copy of the schema.
func (schema *Schema) Clone() *Schema {
	if schema == nil {
		return nil
	}
	cloned := &Schema{
		Type:        schema.Type,
		Description: schema.Description,
		Items:       schema.Items.Clone(),
		raw:         bytes.Clone(schema.raw),
	}
	if schema.Required != nil {
		cloned.Required = append([]string(nil), schema.Required...)
	}
	if schema.Enum != nil {
		cloned.Enum = append([]string(nil), schema.Enum...)
	}
	if schema.Properties != nil {
		cloned.Properties = make(map[string]*Schema, len(schema.Properties))
		for name, property := range schema.Properties {
			cloned.Properties[name] = property.Clone()
		}
	}
	return cloned
}
