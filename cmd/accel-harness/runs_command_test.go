package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/theyoprst/pip-accel/internal/history"
	"github.com/theyoprst/pip-accel/internal/testsupport"
)

func TestRunsCommandEmptyLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No runs recorded yet")
}

func TestRunsCommandRendersRecordedRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)

	base := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	records := []history.Run{
		{
			RunID:          "aaaa1111-0000-4000-8000-000000000001",
			Outcome:        history.OutcomeCompleted,
			ExitCode:       0,
			Workload:       "py.test -v",
			ServiceStarted: true,
			ServiceReady:   true,
			StartedAt:      base,
			Duration:       92 * time.Second,
		},
		{
			RunID:           "bbbb2222-0000-4000-8000-000000000002",
			Outcome:         history.OutcomeSetupFailed,
			ExitCode:        70,
			ErrorMessage:    "start cache backend: boom",
			PrepareFailures: 1,
			StartedAt:       base.Add(time.Hour),
			Duration:        300 * time.Millisecond,
		},
	}
	for _, run := range records {
		if err := store.Record(context.Background(), run); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}

	requireContains(t, out, "RUN")
	requireContains(t, out, "OUTCOME")
	requireContains(t, out, "aaaa1111")
	requireContains(t, out, "bbbb2222")
	requireContains(t, out, "Completed")
	requireContains(t, out, "Setup Failed")
	requireContains(t, out, "2026-03-14 09:30")
	requireContains(t, out, "1m32s")

	// newest first
	if strings.Index(out, "bbbb2222") > strings.Index(out, "aaaa1111") {
		t.Fatalf("expected newest run first:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"runs", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs --limit: %v", err)
	}
	requireContains(t, out, "bbbb2222")
	if strings.Contains(out, "aaaa1111") {
		t.Fatalf("limit 1 should hide the older run:\n%s", out)
	}
}

func TestRunsPruneCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		run := history.Run{RunID: id, Outcome: history.OutcomeCompleted}
		if err := store.Record(context.Background(), run); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"runs", "prune", "--keep", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs prune: %v", err)
	}
	requireContains(t, out, "Removed 2 run records (kept the newest 1)")

	remaining, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(remaining) != 1 || remaining[0].RunID != "run-3" {
		t.Fatalf("expected only run-3 to survive, got %+v", remaining)
	}
}
