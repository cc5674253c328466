package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
)

// CreateCRTool handles the create_cr MCP tool.
// It numbers and writes a new CR document in a project.
type CreateCRTool struct {
	engine *engine.Engine
}

// NewCreateCRTool creates a CreateCRTool over the engine.
func NewCreateCRTool(e *engine.Engine) *CreateCRTool {
	return &CreateCRTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateCRTool) Definition() mcp.Tool {
	return mcp.NewTool("create_cr",
		mcp.WithDescription(
			"Create a new CR (change request) document in a project. The CR number "+
				"is derived from the files already present, so it never collides with "+
				"hand-created CRs. Returns the assigned key, e.g. MDT-066.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project id or code, e.g. `markdown-ticket` or `MDT`."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("CR title. Also used to build the filename slug."),
		),
		mcp.WithObject("attributes",
			mcp.Description(
				"Optional attribute fields for the frontmatter block, e.g. "+
					`{"type": "Bug Fix", "priority": "High", "dependsOn": "MDT-041,MDT-052"}. `+
					"status defaults to Proposed and dateCreated to now.",
			),
		),
		mcp.WithString("body",
			mcp.Description("Optional markdown body. Defaults to a single title header."),
		),
	)
}

// Handle processes the create_cr tool call.
func (t *CreateCRTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.engine.CreateDocument(engine.CreateRequest{
		Project:    req.GetString("project", ""),
		Title:      req.GetString("title", ""),
		Attributes: stringMapArg(req, "attributes"),
		Body:       req.GetString("body", ""),
	})
	if err != nil {
		return errorResult(err)
	}

	return mcp.NewToolResultText(
		"Created **" + res.Key + "** at `" + res.Path + "`."), nil
}
