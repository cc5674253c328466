package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// UpdateCRAttrsTool handles the update_cr_attrs MCP tool.
// It sets attribute fields and keeps their body mirrors in sync.
type UpdateCRAttrsTool struct {
	engine *engine.Engine
}

// NewUpdateCRAttrsTool creates an UpdateCRAttrsTool over the engine.
func NewUpdateCRAttrsTool(e *engine.Engine) *UpdateCRAttrsTool {
	return &UpdateCRAttrsTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateCRAttrsTool) Definition() mcp.Tool {
	return mcp.NewTool("update_cr_attrs",
		mcp.WithDescription(
			"Set attribute fields in a CR's frontmatter block. An empty value "+
				"removes the field. Mirrored fields (status, type, priority, assignee) "+
				"also update their `- **Status**: ...` bullet in the body, so the "+
				"document never shows two different values. All values are validated "+
				"before anything is written: one bad value means no change at all.",
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("CR key, e.g. `MDT-066`."),
		),
		mcp.WithObject("attributes",
			mcp.Required(),
			mcp.Description(
				`Fields to set, e.g. {"status": "In Progress", "assignee": "dana"}. `+
					"List fields (dependsOn, blocks, relatedTickets) take comma-separated keys.",
			),
		),
		mcp.WithString("project",
			mcp.Description("Project id or code. Defaults to the project named by the key's prefix."),
		),
	)
}

// Handle processes the update_cr_attrs tool call.
func (t *UpdateCRAttrsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	updates := stringMapArg(req, "attributes")
	if len(updates) == 0 {
		return mcp.NewToolResultError("attributes must be a non-empty object of field/value pairs"), nil
	}

	res, err := t.engine.UpdateAttributes(req.GetString("project", ""), req.GetString("key", ""), updates)
	if err != nil {
		return errorResult(err)
	}

	return mcp.NewToolResultText(
		"Updated **" + res.Key + "**: " + strings.Join(res.Changed, ", ") + "."), nil
}
