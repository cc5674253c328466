package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// GetCRSectionTool handles the get_cr_section MCP tool.
// It reads one section of a CR instead of the whole document.
type GetCRSectionTool struct {
	engine *engine.Engine
}

// NewGetCRSectionTool creates a GetCRSectionTool over the engine.
func NewGetCRSectionTool(e *engine.Engine) *GetCRSectionTool {
	return &GetCRSectionTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *GetCRSectionTool) Definition() mcp.Tool {
	return mcp.NewTool("get_cr_section",
		mcp.WithDescription(
			"Read one section of a CR document. The section is everything between "+
				"its header and the next header at the same or shallower level, nested "+
				"subsections included. Identify the section by its header text, or by a "+
				"hierarchical path like `2. Solution Analysis > Functional Requirements` "+
				"when the bare title is ambiguous. Use list_cr_sections to see what exists.",
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("CR key, e.g. `MDT-066`."),
		),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("Section header text or ` > `-separated path."),
		),
		mcp.WithString("project",
			mcp.Description("Project id or code. Defaults to the project named by the key's prefix."),
		),
	)
}

// Handle processes the get_cr_section tool call.
func (t *GetCRSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sec, err := t.engine.GetSection(
		req.GetString("project", ""),
		req.GetString("key", ""),
		req.GetString("section", ""),
	)
	if err != nil {
		return errorResult(err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"## %s\n\n(level %d, path: %s)\n\n%s",
		sec.Title, sec.Level, sec.Path, sec.Content)), nil
}
