// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the concrete discovery
// service, document store, and engine, and injects them into the tool
// handlers. No business logic lives here — only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mdticket/mdticket/internal/config"
	"github.com/mdticket/mdticket/internal/document"
	"github.com/mdticket/mdticket/internal/engine"
	"github.com/mdticket/mdticket/internal/project"
	"github.com/mdticket/mdticket/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function stops the descriptor watcher and must
// be called on shutdown (typically via defer). It is always non-nil and
// safe to call even when the watcher failed to start.
func New(ctx context.Context) (*server.MCPServer, func(), error) {
	cfg := config.Load(project.DefaultRegistryDir)

	// Logging goes to stderr: the MCP stdio transport owns stdout.
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// --- Create shared dependencies ---

	discovery := project.NewDiscovery(
		&project.Scanner{Roots: cfg.ScanRoots},
		&project.Registry{Dir: cfg.RegistryDir},
		logger,
	)
	eng := engine.New(discovery, document.NewFileStore(), logger)

	// The watcher keeps the discovery cache honest when descriptors
	// change on disk. Discovery works without it (the TTL bounds
	// staleness), so a watcher failure downgrades to a warning.
	cleanup := func() {}
	watcher, err := project.NewWatcher(discovery, logger)
	if err != nil {
		logger.Warn("descriptor watcher disabled", "err", err)
	} else {
		watcher.Start(ctx)
		cleanup = func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("closing descriptor watcher", "err", err)
			}
		}
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"mdticket",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register project tools ---

	listProjects := tools.NewListProjectsTool(eng)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	registerProject := tools.NewRegisterProjectTool(eng)
	s.AddTool(registerProject.Definition(), registerProject.Handle)

	// --- Register document tools ---

	createCR := tools.NewCreateCRTool(eng)
	s.AddTool(createCR.Definition(), createCR.Handle)

	getCR := tools.NewGetCRTool(eng)
	s.AddTool(getCR.Definition(), getCR.Handle)

	listCRs := tools.NewListCRsTool(eng)
	s.AddTool(listCRs.Definition(), listCRs.Handle)

	deleteCR := tools.NewDeleteCRTool(eng)
	s.AddTool(deleteCR.Definition(), deleteCR.Handle)

	// --- Register section tools ---

	getSection := tools.NewGetCRSectionTool(eng)
	s.AddTool(getSection.Definition(), getSection.Handle)

	updateSection := tools.NewUpdateCRSectionTool(eng)
	s.AddTool(updateSection.Definition(), updateSection.Handle)

	listSections := tools.NewListCRSectionsTool(eng)
	s.AddTool(listSections.Definition(), listSections.Handle)

	// --- Register attribute tools ---

	updateAttrs := tools.NewUpdateCRAttrsTool(eng)
	s.AddTool(updateAttrs.Definition(), updateAttrs.Handle)

	updateStatus := tools.NewUpdateCRStatusTool(eng)
	s.AddTool(updateStatus.Definition(), updateStatus.Handle)

	if issues := cfg.Issues(); len(issues) > 0 {
		for _, issue := range issues {
			logger.Warn("configuration issue", "issue", issue)
		}
	}
	logger.Info("mdticket server ready",
		"version", Version,
		"scan_roots", fmt.Sprintf("%v", cfg.ScanRoots),
		"registry", cfg.RegistryDir,
	)

	return s, cleanup, nil
}

// serverInstructions returns the system instructions that tell the AI
// how to work with CR documents effectively.
func serverInstructions() string {
	return `You have access to mdticket, an MCP server for managing CR
(change request) documents: markdown files with a YAML attribute block,
organized per project and numbered like MDT-066.

## Core concepts

- A PROJECT is a directory with a .mdt.yaml descriptor (or a registry
  entry). Its CRs live in the descriptor's crDirectory. Use
  list_projects to see what exists.
- A CR is one markdown file: YAML frontmatter attributes (status, type,
  priority, ...) plus a markdown body organized in sections.
- CR keys are lenient on input: mdt-66 and MDT-066 name the same CR.
  When a key's prefix matches a project code you can omit the project
  parameter entirely.

## Working with documents

- Prefer SECTION operations over whole-document rewrites. Read with
  get_cr_section, edit with update_cr_section. This keeps your context
  small and your edits safe.
- update_cr_section operations:
  - append / prepend: add content without touching existing lines.
    Use these whenever you are adding.
  - replace: substitutes the section's ENTIRE span, including nested
    subsections. To keep subsections, include them in your content.
- If a section name is ambiguous the tool lists full paths like
  "2. Solution Analysis > Functional Requirements" — retry with one of
  those.
- If you replace a top-level section with just a header line, the
  server treats it as a rename and preserves the nested content,
  returning a warning. Don't rely on this — send full content when you
  mean to replace.

## Attributes

- Change status with update_cr_status; other fields with
  update_cr_attrs. Never edit frontmatter through section operations.
- Mirrored fields (status, type, priority, assignee) update their
  "- **Status**: ..." bullet in the body automatically — do not edit
  those bullets by hand.
- List fields (dependsOn, blocks, relatedTickets) take comma-separated
  CR keys: "MDT-041,MDT-052".
- title, assignee, phaseEpic, and source are single-line fields; body
  content belongs in sections.

## Creating CRs

- create_cr assigns the number — never pick one yourself. Pass the
  title and any attributes; status defaults to Proposed.
- A typical CR body has sections like "1. Description",
  "2. Solution Analysis", "3. Implementation". Build them with
  update_cr_section append after creating.`
}
