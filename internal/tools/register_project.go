package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/engine"
	"github.com/mdticket/mdticket/internal/project"
)

// RegisterProjectTool handles the register_project MCP tool.
// It adds a project to the central registry so it is discoverable
// regardless of the configured scan roots.
type RegisterProjectTool struct {
	engine *engine.Engine
}

// NewRegisterProjectTool creates a RegisterProjectTool over the engine.
func NewRegisterProjectTool(e *engine.Engine) *RegisterProjectTool {
	return &RegisterProjectTool{engine: e}
}

// Definition returns the MCP tool definition for registration.
func (t *RegisterProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("register_project",
		mcp.WithDescription(
			"Register a project in the central registry. Registered projects are "+
				"discoverable from anywhere, independent of scan roots. Registering an "+
				"existing id overwrites its entry.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Project identifier, e.g. `markdown-ticket`. Case-insensitive."),
		),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Uppercase CR key prefix, e.g. `MDT`."),
		),
		mcp.WithString("root_path",
			mcp.Required(),
			mcp.Description("Absolute path to the project root directory."),
		),
		mcp.WithString("cr_directory",
			mcp.Description("Directory holding CR files, relative to the root. Defaults to the root itself."),
		),
		mcp.WithNumber("start_number",
			mcp.Description("Number for the project's first CR. Defaults to 1."),
		),
		mcp.WithString("description",
			mcp.Description("Optional free-text project description."),
		),
	)
}

// Handle processes the register_project tool call.
func (t *RegisterProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc := &project.Descriptor{
		ID:          req.GetString("id", ""),
		Code:        req.GetString("code", ""),
		RootPath:    req.GetString("root_path", ""),
		CRDirectory: req.GetString("cr_directory", ""),
		StartNumber: req.GetInt("start_number", 0),
		Description: req.GetString("description", ""),
	}

	p, err := t.engine.RegisterProject(desc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Registration failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Registered project **%s** (code `%s`).\n\nCR files live in `%s`.",
		p.ID, p.Code, p.CRPath())), nil
}
