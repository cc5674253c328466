package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// GetCRTool handles the get_cr MCP tool.
// It returns a CR's attributes and full markdown body.
type GetCRTool struct {
	engine *engine.Engine
}

// NewGetCRTool creates a GetCRTool over the engine.
func NewGetCRTool(e *engine.Engine) *GetCRTool {
	return &GetCRTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *GetCRTool) Definition() mcp.Tool {
	return mcp.NewTool("get_cr",
		mcp.WithDescription(
			"Fetch a CR document: its attribute block and full markdown body. "+
				"Keys are lenient — `mdt-66` and `MDT-066` name the same CR. "+
				"For large documents prefer get_cr_section to read only what you need.",
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("CR key, e.g. `MDT-066`."),
		),
		mcp.WithString("project",
			mcp.Description("Project id or code. Defaults to the project named by the key's prefix."),
		),
	)
}

// Handle processes the get_cr tool call.
func (t *GetCRTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, entry, err := t.engine.GetDocument(req.GetString("project", ""), req.GetString("key", ""))
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", entry.Key, doc.Title())
	for _, key := range doc.Attrs.Keys() {
		value, _ := doc.Attrs.Get(key)
		attrLine(&b, key, value)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(doc.Body)
	return mcp.NewToolResultText(b.String()), nil
}
