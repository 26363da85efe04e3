package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/fakes3"
	"github.com/theyoprst/pip-accel/internal/logging"
)

func newTeardownCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "teardown",
		Short: "Remove any recorded fake S3 state",
		Long: `Teardown terminates a recorded fake S3 process if it is still alive and
deletes the pid file and data directory. Runs do this automatically on
every exit path; this command covers state left by a crashed harness.
It is safe to invoke when nothing is recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			if err := fakes3.NewController(cfg, logger).Teardown(); err != nil {
				return fmt.Errorf("teardown: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Teardown complete")
			return nil
		},
	}
}
