package application

import (
	"fmt"

	"taskbridge-mcp-server/internal/domain"
)

// Catalog is the static registry of tools, built once at startup from the
// registered handlers. It is read-only afterwards.
type Catalog struct {
	definitions []domain.ToolDefinition
	entries     map[string]catalogEntry
}

type catalogEntry struct {
	definition domain.ToolDefinition
	handler    domain.ToolHandler
}

// NewCatalog gathers the tools of every handler in registration order.
// A tool name registered twice is a programming error and panics.
func NewCatalog(handlers ...domain.ToolHandler) *Catalog {
	c := &Catalog{entries: make(map[string]catalogEntry)}

	for _, handler := range handlers {
		for _, def := range handler.ListTools() {
			if existing, dup := c.entries[def.Name]; dup {
				panic(fmt.Sprintf("tool %q registered by both %s and %s",
					def.Name, existing.handler.ToolName(), handler.ToolName()))
			}
			c.entries[def.Name] = catalogEntry{definition: def, handler: handler}
			c.definitions = append(c.definitions, def)
		}
	}

	return c
}

// List returns every tool definition in registration order.
func (c *Catalog) List() []domain.ToolDefinition {
	out := make([]domain.ToolDefinition, len(c.definitions))
	copy(out, c.definitions)
	return out
}

// Describe returns the definition of a tool.
func (c *Catalog) Describe(name string) (domain.ToolDefinition, bool) {
	entry, ok := c.entries[name]
	return entry.definition, ok
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	return len(c.definitions)
}

func (c *Catalog) lookup(name string) (catalogEntry, bool) {
	entry, ok := c.entries[name]
	return entry, ok
}
