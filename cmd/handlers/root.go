package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"limelight/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "limelight",
		Short: "Limelight tracks public figures and writes their weekly digest.",
		Long: `Limelight collects a public figure's weekly signals from news, social,
and video sources, synthesizes them into a digest, and keeps the history
in a local store.

Provide SERPER_API_KEY for collection and GEMINI_API_KEY for synthesis;
without them the commands run in degraded deterministic mode.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.limelight.yaml)")

	rootCmd.AddCommand(NewDigestCmd())
	rootCmd.AddCommand(NewBioCmd())
	rootCmd.AddCommand(NewProfilesCmd())
	rootCmd.AddCommand(NewImageCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewSourcesCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
