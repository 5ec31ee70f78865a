package tool

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/ai"
)

// entry pairs a tool with its lazily compiled argument validator.
type entry struct {
	tool Tool

	once       sync.Once
	validator  *jsonschema.Validator
	compileErr error
}

func (e *entry) compiled() (*jsonschema.Validator, error) {
	e.once.Do(func() {
		e.validator, e.compileErr = e.tool.Parameters().Compile()
	})
	return e.validator, e.compileErr
}

// Catalog manages a collection of tools with thread-safe operations.
// Names are matched case-insensitively.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]*entry
}

// NewCatalog creates a new empty tool catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tools: make(map[string]*entry),
	}
}

// NewCatalogWithTools creates a new catalog pre-populated with the given tools.
func NewCatalogWithTools(tools ...Tool) *Catalog {
	catalog := NewCatalog()
	catalog.AddTools(tools...)
	return catalog
}

// AddTools adds multiple tools to the catalog.
// If a tool with the same name already exists, it will be replaced.
func (c *Catalog) AddTools(tools ...Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		c.tools[strings.ToLower(t.Name())] = &entry{tool: t}
	}
}

// Get retrieves a tool by name.
func (c *Catalog) Get(name string) (Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found, exists := c.tools[strings.ToLower(name)]
	if !exists {
		return nil, false
	}
	return found.tool, true
}

// Has checks if a tool with the given name exists.
func (c *Catalog) Has(name string) bool {
	_, exists := c.Get(name)
	return exists
}

// Remove removes a tool from the catalog by name.
// Returns true if the tool was found and removed.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	lowerName := strings.ToLower(name)
	if _, exists := c.tools[lowerName]; exists {
		delete(c.tools, lowerName)
		return true
	}
	return false
}

// Size returns the number of tools in the catalog.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Names returns the registered tool names sorted alphabetically.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tools))
	for _, found := range c.tools {
		names = append(names, found.tool.Name())
	}
	slices.Sort(names)
	return names
}

// Descriptions returns the provider descriptions of all tools sorted by
// name, so requests are stable across runs.
func (c *Catalog) Descriptions() []ai.ToolDescription {
	c.mu.RLock()
	defer c.mu.RUnlock()

	descriptions := make([]ai.ToolDescription, 0, len(c.tools))
	for _, found := range c.tools {
		descriptions = append(descriptions, Describe(found.tool))
	}
	slices.SortFunc(descriptions, func(a, b ai.ToolDescription) int {
		return strings.Compare(a.Name, b.Name)
	})
	return descriptions
}

// Merge adds all tools from another catalog into this one.
// Tools from other replace tools with the same name.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}

	other.mu.RLock()
	copied := make(map[string]*entry, len(other.tools))
	for name, found := range other.tools {
		copied[name] = &entry{tool: found.tool}
	}
	other.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, found := range copied {
		c.tools[name] = found
	}
}

// Clone creates an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	clone := NewCatalog()
	clone.Merge(c)
	return clone
}

// Call looks up the named tool, validates arguments against its schema and
// invokes it. Failures are reported as *ToolError wrapping ErrToolNotFound,
// ErrInvalidArguments or the tool's own error.
func (c *Catalog) Call(ctx context.Context, name string, arguments map[string]any) (string, error) {
	c.mu.RLock()
	found, exists := c.tools[strings.ToLower(name)]
	c.mu.RUnlock()
	if !exists {
		return "", &ToolError{Tool: name, Err: ErrToolNotFound}
	}

	validator, err := found.compiled()
	if err != nil {
		return "", &ToolError{Tool: name, Err: fmt.Errorf("invalid parameters schema: %w", err)}
	}

	if arguments == nil {
		arguments = map[string]any{}
	}
	if err := validator.Validate(arguments); err != nil {
		return "", &ToolError{Tool: name, Err: fmt.Errorf("%w: %w", ErrInvalidArguments, err)}
	}

	output, err := found.tool.Call(ctx, arguments)
	if err != nil {
		return "", &ToolError{Tool: name, Err: err}
	}
	return output, nil
}
