package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theyoprst/pip-accel/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded harness runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			stdout := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(stdout, "No runs recorded yet")
				return nil
			}

			headers := []string{"RUN", "STARTED", "OUTCOME", "EXIT", "SERVICE", "PREP FAILURES", "DURATION"}
			fmt.Fprintln(stdout, renderTable(headers, buildRunRows(runs), 3, 5))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	cmd.AddCommand(newRunsPruneCommand(ctx))
	return cmd
}

func newRunsPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old run records, keeping the newest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("prune runs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run records (kept the newest %d)\n", removed, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of newest runs to keep")
	return cmd
}

func buildRunRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.RunID),
			formatRunStamp(run.StartedAt),
			formatOutcomeLabel(string(run.Outcome)),
			strconv.Itoa(run.ExitCode),
			serviceSummary(run),
			strconv.Itoa(run.PrepareFailures),
			formatRunDuration(run.Duration),
		})
	}
	return rows
}

func formatOutcomeLabel(outcome string) string {
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		return ""
	}
	parts := strings.Split(outcome, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func serviceSummary(run history.Run) string {
	switch {
	case run.ServiceReady:
		return "Ready"
	case run.ServiceStarted:
		return "Started"
	default:
		return "Skipped"
	}
}

func formatRunDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
