package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"limelight/internal/core"
)

// NewDigestShowCmd creates the digest show command.
func NewDigestShowCmd() *cobra.Command {
	var format string
	var week string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Display one stored digest",
		Long: `Show a stored digest for a role model.

Defaults to the current week; pass --week for an earlier one.

Examples:
  # Show this week's digest
  limelight digest show "Ada Example"

  # Show a past week as JSON
  limelight digest show "Ada Example" --week 2025-03-03 --format json`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			digestShowRun(strings.Join(args, " "), week, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&week, "week", "w", "", "Week start date (YYYY-MM-DD, Monday)")

	return cmd
}

func digestShowRun(name, week, format string) {
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

	if week == "" {
		week = core.ISODate(core.WeekStart(time.Now()))
	}

	digest, err := a.repo.GetDigest(ctx, rm.ID, week)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load digest: %v\n", err)
		os.Exit(1)
	}
	if digest == nil {
		fmt.Fprintf(os.Stderr, "No digest stored for %s in the week of %s.\n", rm.Name, week)
		os.Exit(1)
	}

	switch strings.ToLower(format) {
	case "json":
		encoded, err := json.MarshalIndent(digest, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode digest: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(encoded))
	default:
		printDigestText(rm.Name, digest)
	}
}
