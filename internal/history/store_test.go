package history_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/theyoprst/pip-accel/internal/history"
	"github.com/theyoprst/pip-accel/internal/testsupport"
)

func TestOpenCreatesSchemaAndRecordsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	started := time.Date(2026, 8, 21, 10, 30, 0, 0, time.UTC)
	run := history.Run{
		RunID:           "run-1",
		Outcome:         history.OutcomeCompleted,
		ExitCode:        0,
		Workload:        "py.test -v",
		ServiceStarted:  true,
		ServiceReady:    true,
		PrepareFailures: 1,
		StartedAt:       started,
		Duration:        90 * time.Second,
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	fetched, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected recorded run to be found")
	}
	if fetched.Outcome != history.OutcomeCompleted {
		t.Fatalf("outcome = %q, want %q", fetched.Outcome, history.OutcomeCompleted)
	}
	if fetched.Workload != "py.test -v" {
		t.Fatalf("workload = %q", fetched.Workload)
	}
	if !fetched.ServiceStarted || !fetched.ServiceReady {
		t.Fatalf("service flags lost: %#v", fetched)
	}
	if fetched.PrepareFailures != 1 {
		t.Fatalf("prepare failures = %d, want 1", fetched.PrepareFailures)
	}
	if !fetched.StartedAt.Equal(started) {
		t.Fatalf("started at = %v, want %v", fetched.StartedAt, started)
	}
	if fetched.Duration != 90*time.Second {
		t.Fatalf("duration = %v, want 90s", fetched.Duration)
	}
}

func TestRecordRequiresRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	run := history.Run{Outcome: history.OutcomeCompleted}
	if err := store.Record(context.Background(), run); err == nil {
		t.Fatal("expected error when run id missing")
	}
}

func TestListReturnsNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		run := history.Run{
			RunID:    fmt.Sprintf("run-%d", i),
			Outcome:  history.OutcomeCompleted,
			ExitCode: i,
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-3" || runs[1].RunID != "run-2" {
		t.Fatalf("unexpected order: %s, %s", runs[0].RunID, runs[1].RunID)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestGetMissingRunReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	run, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil for missing run, got %#v", run)
	}
}

func TestPruneKeepsNewestRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		run := history.Run{RunID: fmt.Sprintf("run-%d", i), Outcome: history.OutcomeSetupFailed, ExitCode: 70}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 runs removed, got %d", removed)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs left, got %d", len(runs))
	}
	if runs[0].RunID != "run-5" || runs[1].RunID != "run-4" {
		t.Fatalf("pruned the wrong rows: %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	path := store.Path()
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
