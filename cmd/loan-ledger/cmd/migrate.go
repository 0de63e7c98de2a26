package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"loan-ledger/internal/app/runtime"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "One-off data migrations",
}

var normalizeStatusCmd = &cobra.Command{
	Use:   "normalize-status",
	Short: `Rewrite the legacy "paid" loan status as "repaid"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *runtime.App) error {
			updated, err := app.Loans.NormalizeLegacyStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loans updated: %d\n", updated)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(normalizeStatusCmd)
}
