package cli

import (
	"fmt"

	"github.com/georgemunganga/centimos-backend/internal/config"
	"github.com/georgemunganga/centimos-backend/internal/database"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := database.Migrate(url); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := database.Rollback(url, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			v, dirty, err := database.Version(url)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

// databaseURL reads only what schema commands need, so they run without the
// API secrets.
func databaseURL() (string, error) {
	cfg := config.Default()
	_ = godotenv.Load()
	cfg.LoadFromEnv()
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return cfg.DatabaseURL, nil
}
