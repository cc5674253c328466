package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// UpdateCRStatusTool handles the update_cr_status MCP tool, the
// single-field convenience path for the most common update.
type UpdateCRStatusTool struct {
	engine *engine.Engine
}

// NewUpdateCRStatusTool creates an UpdateCRStatusTool over the engine.
func NewUpdateCRStatusTool(e *engine.Engine) *UpdateCRStatusTool {
	return &UpdateCRStatusTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateCRStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_cr_status",
		mcp.WithDescription(
			"Set a CR's status. Updates the frontmatter attribute and the "+
				"`- **Status**: ...` bullet in the body together. Equivalent to "+
				`update_cr_attrs with {"status": ...}.`,
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("CR key, e.g. `MDT-066`."),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status value, e.g. `In Progress`, `Approved`, `Implemented`."),
		),
		mcp.WithString("project",
			mcp.Description("Project id or code. Defaults to the project named by the key's prefix."),
		),
	)
}

// Handle processes the update_cr_status tool call.
func (t *UpdateCRStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	res, err := t.engine.UpdateStatus(req.GetString("project", ""), req.GetString("key", ""), status)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("**" + res.Key + "** is now *" + status + "*."), nil
}
