package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// ListProjectsTool handles the list_projects MCP tool.
// It returns every discovered and registered project.
type ListProjectsTool struct {
	engine *engine.Engine
}

// NewListProjectsTool creates a ListProjectsTool over the engine.
func NewListProjectsTool(e *engine.Engine) *ListProjectsTool {
	return &ListProjectsTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription(
			"List all CR projects: directories found by scanning the configured "+
				"roots for .mdt.yaml descriptors, plus explicitly registered projects. "+
				"Returns each project's id, code, and CR directory.",
		),
	)
}

// Handle processes the list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.engine.Projects()

	if len(res.Projects) == 0 {
		return mcp.NewToolResultText(
			"No projects found. Add a `.mdt.yaml` descriptor to a project directory " +
				"under a scan root, or register one with `register_project`."), nil
	}

	var b strings.Builder
	b.WriteString("# Projects\n\n")
	b.WriteString("| ID | Code | CR Directory | Source |\n")
	b.WriteString("|----|------|--------------|--------|\n")
	for _, p := range res.Projects {
		source := "scanned"
		if p.Registered {
			source = "registered"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.ID, p.Code, p.CRPath(), source)
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
