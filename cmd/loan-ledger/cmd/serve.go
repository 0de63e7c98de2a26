package cmd

import (
	"github.com/spf13/cobra"

	"loan-ledger/internal/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service and the outbox dispatcher",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		logger.CtxError(ctx, "failed to initialize app", err)
		return err
	}
	if err := app.Run(ctx); err != nil {
		logger.CtxError(ctx, "app stopped with error", err)
		return err
	}
	return nil
}
