package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// ListCRsTool handles the list_crs MCP tool.
// It enumerates a project's CRs with their key attributes.
type ListCRsTool struct {
	engine *engine.Engine
}

// NewListCRsTool creates a ListCRsTool over the engine.
func NewListCRsTool(e *engine.Engine) *ListCRsTool {
	return &ListCRsTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *ListCRsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_crs",
		mcp.WithDescription(
			"List a project's CRs sorted by number, with title, status, type, "+
				"and priority. Optionally filter by status.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project id or code."),
		),
		mcp.WithString("status",
			mcp.Description("Only show CRs with this exact status, e.g. `In Progress`."),
		),
	)
}

// Handle processes the list_crs tool call.
func (t *ListCRsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRef := req.GetString("project", "")
	statusFilter := req.GetString("status", "")

	summaries, err := t.engine.ListDocuments(projectRef)
	if err != nil {
		return errorResult(err)
	}

	if statusFilter != "" {
		filtered := summaries[:0]
		for _, s := range summaries {
			if s.Status == statusFilter {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	if len(summaries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No CRs found in project %q.", projectRef)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# CRs in %s\n\n", projectRef)
	b.WriteString("| Key | Title | Status | Type | Priority |\n")
	b.WriteString("|-----|-------|--------|------|----------|\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			s.Key, s.Title, s.Status, s.Type, s.Priority)
	}
	return mcp.NewToolResultText(b.String()), nil
}
