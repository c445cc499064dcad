package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewImageCmd creates the image command.
func NewImageCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "image <name>",
		Short: "Find the best profile image for a role model",
		Long: `Search image results, the knowledge base, and page metadata for a
likely portrait of the role model, and print the best-scoring candidate.

With --save the image URL is stored on the role model.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			imageRun(strings.Join(args, " "), save)
		},
	}

	cmd.Flags().BoolVarP(&save, "save", "s", false, "Store the image URL on the role model")

	return cmd
}

func imageRun(name string, save bool) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	candidate := a.collector.ResolveImage(ctx, name)
	if candidate == nil {
		fmt.Printf("No usable image found for %s.\n", name)
		return
	}

	fmt.Printf("Image:  %s\n", candidate.ImageURL)
	if candidate.SourceURL != "" {
		fmt.Printf("Source: %s\n", candidate.SourceURL)
	}
	if candidate.Title != "" {
		fmt.Printf("Title:  %s\n", candidate.Title)
	}
	fmt.Printf("Score:  %.1f\n", candidate.Score)

	if !save {
		return
	}
	rm, err := a.loadOrCreateRoleModel(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load role model: %v\n", err)
		os.Exit(1)
	}
	rm.ImageURL = candidate.ImageURL
	if err := a.repo.SaveRoleModel(ctx, rm); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save image URL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved image for %s.\n", rm.Name)
}
