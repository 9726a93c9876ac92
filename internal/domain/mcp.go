package domain

import (
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolDefinition represents an MCP tool definition.
// The full set of definitions forms the tool catalog advertised by tools/list.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// RequiredArguments returns the argument names the schema marks as required.
func (d ToolDefinition) RequiredArguments() []string {
	if d.InputSchema == nil {
		return nil
	}
	return d.InputSchema.Required
}

// ToolRequest represents an MCP tool call request.
type ToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResponse represents an MCP tool call response.
// Every tool invocation produces one, including failed ones.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock represents a piece of content in the response.
type ContentBlock struct {
	Type string `json:"type"` // always "text" for this server
	Text string `json:"text"`
}

// Text concatenates the text of all content blocks, one per line.
func (r *ToolResponse) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, block := range r.Content {
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n")
}

// TextResponse wraps a single text block into a ToolResponse.
func TextResponse(text string) *ToolResponse {
	return &ToolResponse{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}
