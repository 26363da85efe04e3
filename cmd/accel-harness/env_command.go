package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/fakes3"
	"github.com/theyoprst/pip-accel/internal/logging"
	"github.com/theyoprst/pip-accel/internal/runenv"
)

func newEnvCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the environment settings a workload would receive",
		Long: `Env prints the composed PIP_ACCEL_* settings as sorted KEY=VALUE lines.
Service-backed settings appear only when a prior run's fake S3 state is
still recorded; otherwise only the standing settings print.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			handle, _ := fakes3.NewController(cfg, logging.NewNop()).RecordedHandle()
			env := runenv.Compose(handle, runenv.Options{
				CI:          runenv.DetectCI(os.Environ()),
				SilenceBoto: cfg.Workload.SilenceBoto,
				Bucket:      cfg.FakeS3.Bucket,
			})

			out := cmd.OutOrStdout()
			for _, pair := range env.Pairs() {
				fmt.Fprintln(out, pair)
			}
			return nil
		},
	}
}
