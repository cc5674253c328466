package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// DeleteCRTool handles the delete_cr MCP tool.
type DeleteCRTool struct {
	engine *engine.Engine
}

// NewDeleteCRTool creates a DeleteCRTool over the engine.
func NewDeleteCRTool(e *engine.Engine) *DeleteCRTool {
	return &DeleteCRTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteCRTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_cr",
		mcp.WithDescription(
			"Delete a CR document's file. This is permanent — the file is removed "+
				"from disk, not archived.",
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

// Handle processes the delete_cr tool call.
func (t *DeleteCRTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if err := t.engine.DeleteDocument(req.GetString("project", ""), key); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Deleted **" + key + "**."), nil
}
