package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"limelight/internal/core"
	"limelight/internal/pipeline"
)

// NewDigestCmd creates the digest command and its subcommands.
func NewDigestCmd() *cobra.Command {
	var force bool
	var sendEmail bool
	var recipient string

	cmd := &cobra.Command{
		Use:   "digest <name>",
		Short: "Generate (or fetch) this week's digest for a role model",
		Long: `Generate the weekly digest for a role model.

The week is Monday-aligned; a digest that already exists for the current
week is returned as-is unless --force is set.

Examples:
  # Generate or fetch this week's digest
  limelight digest "Ada Example"

  # Regenerate the current week
  limelight digest "Ada Example" --force

  # Regenerate and email it
  limelight digest "Ada Example" --force --email --to reader@example.com`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			digestRun(strings.Join(args, " "), force, sendEmail, recipient)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate even when this week's digest exists")
	cmd.Flags().BoolVarP(&sendEmail, "email", "e", false, "Email the digest after generating it")
	cmd.Flags().StringVar(&recipient, "to", "", "Recipient address (defaults to email.recipient config)")

	cmd.AddCommand(NewDigestListCmd())
	cmd.AddCommand(NewDigestShowCmd())

	return cmd
}

func digestRun(name string, force, sendEmail bool, recipient string) {
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

	if recipient == "" {
		recipient = a.cfg.Email.Recipient
	}

	digest, err := a.orchestrator().Run(ctx, rm, pipeline.Options{
		Force:     force,
		Email:     sendEmail,
		Recipient: recipient,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate digest: %v\n", err)
		os.Exit(1)
	}

	printDigestText(rm.Name, digest)
}

func printDigestText(name string, d *core.Digest) {
	fmt.Printf("%s digest, week of %s\n\n", name, d.WeekStart)
	fmt.Println(d.SummaryText)
	if len(d.Topics) > 0 {
		fmt.Printf("\nTopics: %s\n", strings.Join(d.Topics, ", "))
	}
	fmt.Println()
	for _, item := range d.Items {
		badge := ""
		if item.IsOfficial {
			badge = " [official]"
		}
		fmt.Printf("- [%s]%s %s\n", item.SourceType, badge, item.SourceTitle)
		if item.Summary != "" {
			fmt.Printf("  %s\n", item.Summary)
		}
		if item.SourceURL != "" {
			fmt.Printf("  %s\n", item.SourceURL)
		}
	}
	if !d.EmailSentAt.IsZero() {
		fmt.Printf("\nEmailed at %s\n", d.EmailSentAt.Format("2006-01-02 15:04"))
	}
}
