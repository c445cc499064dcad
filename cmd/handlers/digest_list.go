package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewDigestListCmd creates the digest list command.
func NewDigestListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <name>",
		Short: "List stored digests for a role model",
		Long: `List the digests stored for a role model, newest week first.

Examples:
  # List the last 10 weeks
  limelight digest list "Ada Example"

  # List the last 4 weeks
  limelight digest list "Ada Example" --limit 4`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			digestListRun(strings.Join(args, " "), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of digests to list")

	return cmd
}

func digestListRun(name string, limit int) {
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
		fmt.Fprintf(os.Stderr, "No role model named %q. Run 'limelight digest %q' first.\n", name, name)
		os.Exit(1)
	}

	digests, err := a.repo.ListRecentDigests(ctx, rm.ID, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list digests: %v\n", err)
		os.Exit(1)
	}
	if len(digests) == 0 {
		fmt.Printf("No digests stored for %s yet.\n", rm.Name)
		return
	}

	fmt.Printf("%-12s  %-5s  %-7s  %s\n", "Week", "Items", "Emailed", "Summary")
	for _, d := range digests {
		emailed := "no"
		if !d.EmailSentAt.IsZero() {
			emailed = "yes"
		}
		summary := d.SummaryText
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}
		fmt.Printf("%-12s  %-5d  %-7s  %s\n", d.WeekStart, len(d.Items), emailed, summary)
	}
}
