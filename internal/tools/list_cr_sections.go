package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// ListCRSectionsTool handles the list_cr_sections MCP tool.
// It shows a CR's section tree with resolvable paths.
type ListCRSectionsTool struct {
	engine *engine.Engine
}

// NewListCRSectionsTool creates a ListCRSectionsTool over the engine.
func NewListCRSectionsTool(e *engine.Engine) *ListCRSectionsTool {
	return &ListCRSectionsTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ListCRSectionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_cr_sections",
		mcp.WithDescription(
			"List a CR document's sections as an indented tree. Each entry shows "+
				"the path expression usable with get_cr_section and update_cr_section.",
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

// Handle processes the list_cr_sections tool call.
func (t *ListCRSectionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	infos, err := t.engine.ListSections(req.GetString("project", ""), key)
	if err != nil {
		return errorResult(err)
	}

	if len(infos) == 0 {
		return mcp.NewToolResultText("The document has no sections."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sections of %s\n\n", key)
	for _, info := range infos {
		indent := strings.Repeat("  ", info.Level-1)
		fmt.Fprintf(&b, "%s- %s (path: `%s`)\n", indent, info.Title, info.Path)
	}
	return mcp.NewToolResultText(b.String()), nil
}
