package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewBioCmd creates the bio command.
func NewBioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bio <name>",
		Short: "Write a sourced biography for a role model",
		Long: `Collect verified public sources for a role model and write a short
biography from them. Without enough verified sources the command reports
that instead of inventing one.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bioRun(strings.Join(args, " "))
		},
	}
	return cmd
}

func bioRun(name string) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	text, err := a.bioGenerator().Generate(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate bio: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}
