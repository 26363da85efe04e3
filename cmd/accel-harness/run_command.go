package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/harness"
	"github.com/theyoprst/pip-accel/internal/history"
	"github.com/theyoprst/pip-accel/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [-- workload command...]",
		Short: "Run the full harness: fake S3, preparation, workload, teardown",
		Long: `Run starts the ephemeral fake S3 server (when the binary is available),
prepares package states concurrently, composes the workload environment,
executes the workload, and tears the service down afterwards.

The process exit status equals the workload's exit code. Failures before
the workload launches exit with status 70.

Without arguments the configured default workload runs; anything after --
replaces it:

  accel-harness run -- py.test -v -k test_s3`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return &harness.SetupError{Err: fmt.Errorf("init logger: %w", err)}
			}

			opts := []harness.Option{}
			store, storeErr := history.Open(cfg)
			if storeErr != nil {
				fmt.Fprintf(os.Stderr, "warn: run history unavailable: %v\n", storeErr)
			} else {
				defer store.Close()
				opts = append(opts, harness.WithHistoryStore(store))
			}

			coordinator := harness.NewCoordinator(cfg, logger, opts...)
			result, err := coordinator.Run(signalCtx, harness.RunOptions{Workload: args})
			if err != nil {
				return err
			}
			if result.ExitCode != 0 {
				return &exitCodeError{code: result.ExitCode}
			}
			return nil
		},
	}
}
