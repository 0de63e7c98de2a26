// Package cmd holds the loan-ledger command line.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"loan-ledger/internal/app/runtime"
	"loan-ledger/internal/pkg/logger"
)

var cfgFile string

var newApp = runtime.New

var rootCmd = &cobra.Command{
	Use:   "loan-ledger",
	Short: "Loan lifecycle ledger service",
	Long: `loan-ledger tracks personal and family loans from creation to repayment
and records the income and expense transactions each step implies.

Running without a subcommand starts the HTTP service.

Example:
  loan-ledger serve
  loan-ledger outbox drain --until-empty
  loan-ledger migrate normalize-status`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			_ = os.Setenv("CONFIG_PATH", cfgFile)
		}
	},
	RunE: runServe,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or configs/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(outboxCmd)
	rootCmd.AddCommand(migrateCmd)
}

// withApp builds the app for a one-shot command and always releases it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *runtime.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := newApp(ctx)
	if err != nil {
		logger.CtxError(ctx, "failed to initialize app", err)
		return err
	}
	defer app.Shutdown(context.WithoutCancel(ctx))
	return fn(ctx, app)
}
