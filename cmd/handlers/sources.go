package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"limelight/internal/core"
)

// NewSourcesCmd creates the sources command and its subcommands.
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage a role model's custom sources",
		Long: `Custom sources are URLs folded into every weekly collection run for a
role model, independent of search results.`,
	}

	cmd.AddCommand(newSourcesAddCmd())
	cmd.AddCommand(newSourcesListCmd())

	return cmd
}

func newSourcesAddCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a custom source URL for a role model",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sourcesAddRun(args[0], args[1], label)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Display label for the source")

	return cmd
}

func newSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <name>",
		Short: "List a role model's custom sources",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sourcesListRun(args[0])
		},
	}
}

func sourcesAddRun(name, url, label string) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	rm, err := a.loadOrCreateRoleModel(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load role model: %v\n", err)
		os.Exit(1)
	}

	if err := a.repo.AddCustomSource(ctx, rm.ID, core.CustomSource{Label: label, URL: url}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add source: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added source for %s: %s\n", rm.Name, url)
}

func sourcesListRun(name string) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	rm, err := a.repo.GetRoleModel(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load role model: %v\n", err)
		os.Exit(1)
	}
	if rm == nil {
		fmt.Fprintf(os.Stderr, "No role model named %q.\n", name)
		os.Exit(1)
	}

	sources, err := a.repo.ListCustomSources(ctx, rm.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list sources: %v\n", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Printf("No custom sources for %s.\n", rm.Name)
		return
	}
	for _, src := range sources {
		if src.Label != "" {
			fmt.Printf("%s (%s)\n", src.URL, src.Label)
		} else {
			fmt.Println(src.URL)
		}
	}
}
