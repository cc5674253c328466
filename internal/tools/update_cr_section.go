package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
	"github.com/mdticket/mdticket/internal/section"
)

// UpdateCRSectionTool handles the update_cr_section MCP tool.
// It applies a replace/append/prepend to one section of a CR.
type UpdateCRSectionTool struct {
	engine *engine.Engine
}

// NewUpdateCRSectionTool creates an UpdateCRSectionTool over the engine.
func NewUpdateCRSectionTool(e *engine.Engine) *UpdateCRSectionTool {
	return &UpdateCRSectionTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateCRSectionTool) Definition() mcp.Tool {
	return mcp.NewTool("update_cr_section",
		mcp.WithDescription(
			"Edit one section of a CR document without rewriting the rest.\n\n"+
				"Operations:\n"+
				"- `replace`: substitute the section's entire span — header plus content "+
				"up to the next sibling header. Nested subsections are part of the span: "+
				"to keep them, include them in the replacement content.\n"+
				"- `append`: add content at the end of the section (after its subsections).\n"+
				"- `prepend`: add content directly after the section header.\n\n"+
				"append and prepend never remove existing lines; prefer them when adding.",
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("CR key, e.g. `MDT-066`."),
		),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("Section header text or ` > `-separated path."),
		),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("One of: replace, append, prepend."),
			mcp.Enum("replace", "append", "prepend"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content for the operation."),
		),
		mcp.WithString("project",
			mcp.Description("Project id or code. Defaults to the project named by the key's prefix."),
		),
	)
}

// Handle processes the update_cr_section tool call.
func (t *UpdateCRSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op := section.Operation(req.GetString("operation", ""))
	if err := section.ValidateOperation(op); err != nil || op == section.OpGet {
		return mcp.NewToolResultError(
			"operation must be one of: replace, append, prepend (use get_cr_section to read)"), nil
	}

	res, err := t.engine.UpdateSection(
		req.GetString("project", ""),
		req.GetString("key", ""),
		req.GetString("section", ""),
		op,
		req.GetString("content", ""),
	)
	if err != nil {
		return errorResult(err)
	}

	msg := "Updated section in **" + res.Key + "**."
	if res.Warning != "" {
		msg += "\n\n⚠️ " + res.Warning
	}
	return mcp.NewToolResultText(msg), nil
}
