package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger-engine/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Hierarchical ledger aggregation and financial statements",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newMigrateCommand())

	return rootCmd
}
