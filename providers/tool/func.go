package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/leofalp/fungraph/core/jsonschema"
)

// FuncTool binds a name, description and schema to a typed Go function.
// Arguments are decoded into I using its json struct tags; the output O is
// returned verbatim when it is a string and JSON-encoded otherwise.
type FuncTool[I, O any] struct {
	name        string
	description string
	parameters  *jsonschema.Schema
	function    func(ctx context.Context, input I) (O, error)
}

// funcToolOptions holds optional configuration for a tool created via
// [NewFuncTool].
type funcToolOptions struct {
	description string
	parameters  *jsonschema.Schema
}

// FuncToolOption configures a [FuncTool].
type FuncToolOption func(*funcToolOptions)

// WithDescription sets a human-readable description for the tool.
// Providers surface this description to the language model to help it decide
// when to invoke the tool.
func WithDescription(description string) FuncToolOption {
	return func(options *funcToolOptions) {
		options.description = description
	}
}

// WithParameters sets the JSON schema advertised for the tool arguments.
func WithParameters(parameters *jsonschema.Schema) FuncToolOption {
	return func(options *funcToolOptions) {
		options.parameters = parameters
	}
}

// NewFuncTool constructs a [FuncTool] with the given name and handler.
//
// Example:
//
//	weather := tool.NewFuncTool("get_weather", getWeather,
//	    tool.WithDescription("Get the weather for a city."),
//	    tool.WithParameters(jsonschema.Object(map[string]*jsonschema.Schema{
//	        "location": jsonschema.String("City name"),
//	    }, "location")),
//	)
func NewFuncTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...FuncToolOption) *FuncTool[I, O] {
	toolOptions := &funcToolOptions{}
	for _, option := range options {
		option(toolOptions)
	}

	return &FuncTool[I, O]{
		name:        name,
		description: toolOptions.description,
		parameters:  toolOptions.parameters,
		function:    function,
	}
}

func (t *FuncTool[I, O]) Name() string { return t.name }

func (t *FuncTool[I, O]) Description() string { return t.description }

func (t *FuncTool[I, O]) Parameters() *jsonschema.Schema { return t.parameters }

// Call decodes arguments into I, runs the handler and renders its output.
func (t *FuncTool[I, O]) Call(ctx context.Context, arguments map[string]any) (string, error) {
	input, err := decodeInput[I](arguments)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	output, err := t.function(ctx, input)
	if err != nil {
		return "", err
	}

	if text, ok := any(output).(string); ok {
		return text, nil
	}

	encoded, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool output: %w", err)
	}
	return string(encoded), nil
}

// decodeInput maps loosely typed JSON arguments onto I. Weak typing lets a
// model send "3" for an int field.
func decodeInput[I any](arguments map[string]any) (I, error) {
	var input I
	if len(arguments) == 0 {
		return input, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &input,
	})
	if err != nil {
		return input, err
	}

	if err := decoder.Decode(arguments); err != nil {
		return input, err
	}
	return input, nil
}
