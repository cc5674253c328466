package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mdticket/mdticket/internal/config"
	"github.com/mdticket/mdticket/internal/document"
	"github.com/mdticket/mdticket/internal/engine"
	"github.com/mdticket/mdticket/internal/project"
	"github.com/mdticket/mdticket/internal/section"
)

// newEngine builds the engine from the environment, same wiring as the
// MCP server.
func newEngine() *engine.Engine {
	cfg := config.Load(project.DefaultRegistryDir)
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	discovery := project.NewDiscovery(
		&project.Scanner{Roots: cfg.ScanRoots},
		&project.Registry{Dir: cfg.RegistryDir},
		logger,
	)
	return engine.New(discovery, document.NewFileStore(), logger)
}

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List discovered and registered projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := newEngine().Projects()
			if len(res.Projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tCR DIRECTORY\tSOURCE")
			for _, p := range res.Projects {
				source := "scanned"
				if p.Registered {
					source = "registered"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Code, p.CRPath(), source)
			}
			w.Flush()
			for _, warning := range res.Warnings {
				fmt.Fprintln(os.Stderr, "warning:", warning)
			}
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var code, crDir, description string
	var startNumber int
	cmd := &cobra.Command{
		Use:   "register <id> <root-path>",
		Short: "Register a project in the central registry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newEngine().RegisterProject(&project.Descriptor{
				ID:          args[0],
				Code:        code,
				RootPath:    args[1],
				CRDirectory: crDir,
				StartNumber: startNumber,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s (%s); CRs in %s\n", p.ID, p.Code, p.CRPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "CR key prefix, e.g. MDT (required)")
	cmd.Flags().StringVar(&crDir, "cr-dir", "", "CR directory relative to the root")
	cmd.Flags().IntVar(&startNumber, "start", 0, "number for the first CR")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.MarkFlagRequired("code")
	return cmd
}

func newListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's CRs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := newEngine().ListDocuments(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSTATUS\tTYPE\tPRIORITY\tTITLE")
			for _, s := range summaries {
				if status != "" && s.Status != status {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Key, s.Status, s.Type, s.Priority, s.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show CRs with this status")
	return cmd
}

func newShowCmd() *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show a CR's attributes and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, entry, err := newEngine().GetDocument(projectRef, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s  (%s)\n\n", entry.Key, entry.Path)
			for _, key := range doc.Attrs.Keys() {
				value, _ := doc.Attrs.Get(key)
				fmt.Printf("  %s: %s\n", key, value)
			}
			fmt.Println()
			fmt.Println(doc.Body)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code (defaults to the key's prefix)")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var attrs []string
	var body string
	cmd := &cobra.Command{
		Use:   "create <project> <title>",
		Short: "Create a new CR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attributes := make(map[string]string, len(attrs))
			for _, pair := range attrs {
				field, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid --attr %q: expected field=value", pair)
				}
				attributes[field] = value
			}
			res, err := newEngine().CreateDocument(engine.CreateRequest{
				Project:    args[0],
				Title:      args[1],
				Attributes: attributes,
				Body:       body,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s at %s\n", res.Key, res.Path)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "attribute field=value (repeatable)")
	cmd.Flags().StringVar(&body, "body", "", "markdown body (defaults to a title header)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a CR file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newEngine().DeleteDocument(projectRef, args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code (defaults to the key's prefix)")
	return cmd
}

func newSectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Read, edit, and list document sections",
	}
	cmd.AddCommand(newSectionGetCmd(), newSectionUpdateCmd(), newSectionListCmd())
	return cmd
}

func newSectionGetCmd() *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:   "get <key> <section>",
		Short: "Print one section's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := newEngine().GetSection(projectRef, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(sec.Content)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code")
	return cmd
}

func newSectionUpdateCmd() *cobra.Command {
	var projectRef, content, file string
	cmd := &cobra.Command{
		Use:   "update <key> <section> <replace|append|prepend>",
		Short: "Edit one section",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := content
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				text = string(data)
			}
			res, err := newEngine().UpdateSection(
				projectRef, args[0], args[1], section.Operation(args[2]), text)
			if err != nil {
				return err
			}
			fmt.Println("Updated", res.Key)
			if res.Warning != "" {
				fmt.Fprintln(os.Stderr, "warning:", res.Warning)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code")
	cmd.Flags().StringVarP(&content, "content", "c", "", "content for the operation")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from a file instead")
	return cmd
}

func newSectionListCmd() *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:   "list <key>",
		Short: "List a document's sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := newEngine().ListSections(projectRef, args[0])
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Printf("%s%s\n", strings.Repeat("  ", info.Level-1), info.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code")
	return cmd
}

func newAttrsCmd() *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:   "attrs <key> <field=value>...",
		Short: "Set attribute fields (empty value removes the field)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make(map[string]string, len(args)-1)
			for _, pair := range args[1:] {
				field, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid update %q: expected field=value", pair)
				}
				updates[field] = value
			}
			res, err := newEngine().UpdateAttributes(projectRef, args[0], updates)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s: %s\n", res.Key, strings.Join(res.Changed, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:   "status <key> <status>",
		Short: "Set a CR's status (and sync its body bullet)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newEngine().UpdateStatus(projectRef, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", res.Key, args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or code")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and any issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(project.DefaultRegistryDir)
			fmt.Println("Scan roots:")
			for _, root := range cfg.ScanRoots {
				fmt.Println("  -", root)
			}
			fmt.Println("Registry: ", cfg.RegistryDir)
			fmt.Println("Debug:    ", cfg.Debug)
			if issues := cfg.Issues(); len(issues) > 0 {
				fmt.Println("\nIssues:")
				for _, issue := range issues {
					fmt.Println("  -", issue)
				}
			}
			return nil
		},
	}
}
