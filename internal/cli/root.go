// Package cli holds the centimos command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "centimos",
		Short: "Centimos grocery price tracker",
		Long: `Centimos tracks grocery prices reported by shoppers, compares them across
nearby stores and keeps shopping lists in sync with what was actually paid.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewRatesCommand())

	return cmd
}
