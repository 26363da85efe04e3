package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/deps"
	"github.com/theyoprst/pip-accel/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check external dependencies and harness paths",
		Long: `Check verifies the binaries a run would invoke and the directories the
harness writes to. Missing optional dependencies are reported as warnings;
missing required dependencies or unusable paths fail the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			missing := make([]string, 0)
			for _, status := range deps.CheckBinaries(deps.ForConfig(cfg)) {
				if status.Available {
					message := "Ready"
					if status.Command != "" {
						message = fmt.Sprintf("Ready (command: %s)", status.Command)
					}
					fmt.Fprintln(stdout, renderStatusLine(status.Name, statusOK, message, colorize))
					continue
				}
				detail := strings.TrimSpace(status.Detail)
				if detail == "" {
					detail = "not available"
				}
				if status.Optional {
					fmt.Fprintln(stdout, renderStatusLine(status.Name, statusWarn, detail+" (optional)", colorize))
					continue
				}
				fmt.Fprintln(stdout, renderStatusLine(status.Name, statusError, detail, colorize))
				missing = append(missing, status.Name)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(stdout, line)
			}
			failedPaths := make([]string, 0)
			for _, result := range preflight.RunAll(cfg) {
				if result.Passed {
					fmt.Fprintln(stdout, renderStatusLine(result.Name, statusOK, result.Detail, colorize))
					continue
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, statusError, result.Detail, colorize))
				failedPaths = append(failedPaths, result.Name)
			}

			if len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			if len(failedPaths) > 0 {
				return fmt.Errorf("unusable paths: %s", strings.Join(failedPaths, ", "))
			}
			return nil
		},
	}
}
