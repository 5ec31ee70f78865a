package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/ai"
)

var (
	// ErrToolNotFound is returned when a model requests a tool the catalog
	// does not hold.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArguments is returned when tool arguments fail schema
	// validation or cannot be decoded into the tool's input type.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Tool is the provider-agnostic interface for all tools.
type Tool interface {
	// Name is the identifier the model uses to request the tool.
	Name() string

	// Description tells the model when and how to use the tool.
	Description() string

	// Parameters is the JSON schema of the arguments object. Nil means the
	// tool takes no declared parameters.
	Parameters() *jsonschema.Schema

	// Call runs the tool with arguments already decoded from JSON and
	// returns the text handed back to the model.
	Call(ctx context.Context, arguments map[string]any) (string, error)
}

// Describe returns the description advertised to a provider for t.
func Describe(t Tool) ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// ToolError reports a failure while executing a named tool.
type ToolError struct {
	Tool string
	Err  error
}

func (toolError *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %v", toolError.Tool, toolError.Err)
}

func (toolError *ToolError) Unwrap() error {
	return toolError.Err
}
