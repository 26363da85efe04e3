package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/logging"
	"github.com/theyoprst/pip-accel/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display harness log output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			path := logging.FilePath(cfg)
			offset := int64(-1)
			limit := lines
			if limit < 0 {
				limit = 0
			}
			printed := false

			for {
				result, err := logs.Tail(signalCtx, path, logs.TailOptions{
					Offset: offset,
					Limit:  limit,
					Follow: follow,
					Wait:   time.Second,
				})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("tail log: %w", err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
					printed = true
				}
				offset = result.Offset
				limit = 0
				if !follow {
					if !printed {
						fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					}
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of recent lines to show")
	return cmd
}
