package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"loan-ledger/internal/app/runtime"
	"loan-ledger/internal/service"
)

var untilEmpty bool

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and replay derived transactions waiting in loan outboxes",
}

var outboxDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Deliver pending derived transactions once",
	Long: `Deliver pending derived transactions for one batch of loans.

With --until-empty, batches repeat until nothing is left or a batch
delivers nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *runtime.App) error {
			total, err := drain(ctx, app.Dispatcher, untilEmpty)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loans: %d, delivered: %d, failed: %d\n",
				total.Loans, total.Delivered, total.Failed)
			return nil
		})
	},
}

func init() {
	outboxDrainCmd.Flags().BoolVar(&untilEmpty, "until-empty", false, "repeat until no loan has pending effects")
	outboxCmd.AddCommand(outboxDrainCmd)
}

func drain(ctx context.Context, drainer service.OutboxDrainerInterface, repeat bool) (service.DrainResult, error) {
	var total service.DrainResult
	for {
		batch, err := drainer.Drain(ctx)
		if err != nil {
			return total, err
		}
		total.Loans += batch.Loans
		total.Delivered += batch.Delivered
		total.Failed += batch.Failed

		// a batch without progress would come back identical
		if !repeat || batch.Loans == 0 || batch.Delivered == 0 {
			return total, nil
		}
	}
}
