package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/logging"
	"github.com/theyoprst/pip-accel/internal/prepare"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Run only the package preparation steps",
		Long: `Prepare pins the configured package states (installs, removals,
version holds) without starting the service or the workload. During a
full run the same steps execute concurrently with service startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			result := prepare.NewRunner(cfg, logger).Run(signalCtx)
			if err := result.Err(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "All %d preparation steps completed\n", len(result.Steps))
			return nil
		},
	}
}
