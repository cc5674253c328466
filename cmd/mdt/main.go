// mdt: command-line client for the CR document engine.
//
// The CLI shares the engine (and its environment configuration) with
// the MCP server, so a ticket created here is immediately visible to
// agents and vice versa.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mdt",
		Short: "Manage CR (change request) markdown documents",
		Long: `mdt manages CR documents: markdown files with a YAML attribute
block, organized per project and numbered like MDT-066.

Projects are found by scanning MDT_SCAN_ROOTS for .mdt.yaml descriptors
and by reading the central registry (MDT_REGISTRY_DIR).`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newProjectsCmd(),
		newRegisterCmd(),
		newListCmd(),
		newShowCmd(),
		newCreateCmd(),
		newDeleteCmd(),
		newSectionCmd(),
		newAttrsCmd(),
		newStatusCmd(),
		newConfigCmd(),
	)
	return root
}
