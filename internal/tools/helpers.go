// Package tools implements the MCP tool handlers for the CR engine.
//
// Each tool is a struct that receives its dependencies (the engine) and
// exposes a Definition for registration plus a Handle compatible with
// mcp-go's CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on the engine, not on storage or discovery
// - Caller faults (bad keys, missing CRs, ambiguous sections) become
//   tool result errors the model can read and correct; only unexpected
//   I/O propagates as a Go error.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mdticket/mdticket/internal/document"
	"github.com/mdticket/mdticket/internal/project"
	"github.com/mdticket/mdticket/internal/section"
)

// errorResult classifies an engine error. Known caller faults are
// returned as tool result errors (handler error nil) so the calling
// model sees the message and can fix its input; anything else is an
// unexpected failure and propagates.
func errorResult(err error) (*mcp.CallToolResult, error) {
	var (
		keyErr      *document.KeyError
		validation  *document.ValidationError
		docMissing  *document.NotFoundError
		projMissing *project.NotFoundError
		secMissing  *section.NotFoundError
		ambiguous   *section.AmbiguousError
	)
	switch {
	case errors.As(err, &keyErr),
		errors.As(err, &validation),
		errors.As(err, &docMissing),
		errors.As(err, &projMissing),
		errors.As(err, &secMissing):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.As(err, &ambiguous):
		return mcp.NewToolResultError(ambiguousMessage(ambiguous)), nil
	}
	return nil, err
}

// ambiguousMessage renders an ambiguous section match with one
// candidate per line so the model can copy a full path back.
func ambiguousMessage(err *section.AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section %q matches %d sections. Use one of these full paths:\n",
		err.Expr, len(err.Candidates))
	for _, c := range err.Candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

// attrLine renders one attribute as a markdown bullet.
func attrLine(b *strings.Builder, name, value string) {
	if value != "" {
		fmt.Fprintf(b, "- **%s:** %s\n", name, value)
	}
}

// stringMapArg extracts a map-valued tool argument as string pairs.
// Non-string values are stringified with %v — YAML scalars all have a
// sensible string form.
func stringMapArg(req mcp.CallToolRequest, name string) map[string]string {
	args := req.GetArguments()
	raw, ok := args[name].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
