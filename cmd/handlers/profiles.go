package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewProfilesCmd creates the profiles command.
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles <name>",
		Short: "Resolve a role model's official social and video handles",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			profilesRun(strings.Join(args, " "))
		},
	}
	return cmd
}

func profilesRun(name string) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	resolved := a.resolver.Resolve(ctx, name)
	if resolved.Empty() {
		fmt.Printf("No official profiles found for %s.\n", name)
		return
	}

	rows := []struct {
		label string
		value string
	}{
		{"X / Twitter", resolved.Twitter},
		{"Instagram", resolved.Instagram},
		{"Facebook", resolved.Facebook},
		{"LinkedIn", resolved.LinkedIn},
		{"TikTok", resolved.TikTok},
		{"YouTube channel", resolved.YouTubeChannelID},
		{"YouTube user", resolved.YouTubeUsername},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		fmt.Printf("%-16s %s\n", row.label, row.value)
	}
}
