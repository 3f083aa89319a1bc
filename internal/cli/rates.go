package cli

import (
	"context"
	"fmt"

	"github.com/georgemunganga/centimos-backend/internal/config"
	"github.com/georgemunganga/centimos-backend/internal/database"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
	"github.com/spf13/cobra"
)

// NewRatesCommand creates the rates command.
func NewRatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Exchange rate maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Fetch and store the current USD to VES rate once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.Logger()

			db, err := database.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			rate, err := NewRatesService(db, cfg, metrics.NewRegistry(), logger).Update(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s VES (source %s)\n", rate.CurrencyCode, rate.RateToVES, rate.Source)
			return nil
		},
	})
	return cmd
}
