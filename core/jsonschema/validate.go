package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaResource is the in-memory URL the compiler registers a schema under.
const schemaResource = "fungraph://tool/parameters.json"

// ValidationError reports that a value does not satisfy a schema.
type ValidationError struct {
	Err error
}

func (validationError *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", validationError.Err)
}

func (validationError *ValidationError) Unwrap() error {
	return validationError.Err
}

// Validator checks decoded JSON values against a compiled schema.
type Validator struct {
	compiled *jsv.Schema
}

// Compile turns the schema into a reusable Validator. A nil schema yields a
// Validator that accepts everything.
func (schema *Schema) Compile() (*Validator, error) {
	if schema == nil {
		return &Validator{}, nil
	}

	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	document, err := jsv.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	compiler := jsv.NewCompiler()
	if err := compiler.AddResource(schemaResource, document); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{compiled: compiled}, nil
}

// Validate returns a *ValidationError when value violates the schema.
// value must be in the shape produced by encoding/json decoding into any.
func (validator *Validator) Validate(value any) error {
	if validator == nil || validator.compiled == nil {
		return nil
	}
	if err := validator.compiled.Validate(value); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
