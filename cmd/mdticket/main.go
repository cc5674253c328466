// mdticket: CR Document Engine MCP Server
//
// An MCP server that lets AI coding tools (Claude Code, Cursor, Gemini
// CLI, ...) manage CR (change request) documents: markdown files with a
// YAML attribute block, organized per project and numbered like MDT-066.
//
// Usage:
//
//	mdticket serve    # Start MCP server (stdio transport)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mdtserver "github.com/mdticket/mdticket/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("mdticket v%s\n", mdtserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	// Graceful shutdown on interrupt; the context also stops the
	// descriptor watcher.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	s, cleanup, err := mdtserver.New(ctx)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `mdticket v%s — CR Document Engine MCP Server

Usage:
  mdticket serve    Start the MCP server (stdio transport)

Environment:
  MDT_SCAN_ROOTS    Colon-separated directories (or globs) scanned for
                    .mdt.yaml project descriptors. Default: cwd.
  MDT_REGISTRY_DIR  Project registry directory.
                    Default: ~/.config/mdticket/projects
  MDT_DEBUG         Set to any value for debug logging (stderr).

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "mdticket": {
        "command": "mdticket",
        "args": ["serve"]
      }
    }
  }
`, mdtserver.Version)
}
