package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Check that a name is a living person with a public presence",
		Long: `Run the acceptance checks for a prospective role model: recent
coverage, distinct domains, social presence, and liveness signals.

Requires SERPER_API_KEY; validation does not run offline.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			validateRun(strings.Join(args, " "))
		},
	}
	return cmd
}

func validateRun(name string) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	verdict, err := a.validator().Check(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	if verdict.OK {
		fmt.Printf("%s looks trackable.\n", name)
	} else {
		fmt.Println(verdict.Reason)
	}
	fmt.Printf("Recent items: %d  Domains: %d  Social profiles: %d\n",
		verdict.RecentCount, verdict.DomainCount, verdict.SocialProfiles)

	if !verdict.OK {
		os.Exit(1)
	}
}
