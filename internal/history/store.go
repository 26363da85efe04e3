package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/theyoprst/pip-accel/internal/config"
)

// Store manages run-ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the run-ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the ledger database file.
func (s *Store) Path() string {
	return s.path
}

// Record inserts a finished run into the ledger.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.RunID == "" {
		return errors.New("run id is empty")
	}
	if run.Outcome == "" {
		return errors.New("run outcome is empty")
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            run_id, outcome, exit_code, workload, service_started,
            service_ready, prepare_failures, error_message, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		string(run.Outcome),
		run.ExitCode,
		nullableString(run.Workload),
		boolToInt(run.ServiceStarted),
		boolToInt(run.ServiceReady),
		run.PrepareFailures,
		nullableString(run.ErrorMessage),
		startedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = "id, run_id, outcome, exit_code, workload, service_started, service_ready, prepare_failures, error_message, started_at, duration_ms"

// List returns the most recent runs, newest first. A limit <= 0 returns
// every recorded run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get fetches a single run by its identifier.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Prune deletes all but the newest keep runs and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		id              int64
		runID           string
		outcomeStr      string
		exitCode        int
		workload        sql.NullString
		serviceStarted  sql.NullInt64
		serviceReady    sql.NullInt64
		prepareFailures sql.NullInt64
		errorMessage    sql.NullString
		startedRaw      sql.NullString
		durationMS      sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&outcomeStr,
		&exitCode,
		&workload,
		&serviceStarted,
		&serviceReady,
		&prepareFailures,
		&errorMessage,
		&startedRaw,
		&durationMS,
	); err != nil {
		return Run{}, err
	}

	run := Run{
		ID:              id,
		RunID:           runID,
		Outcome:         Outcome(outcomeStr),
		ExitCode:        exitCode,
		Workload:        workload.String,
		ServiceStarted:  serviceStarted.Int64 != 0,
		ServiceReady:    serviceReady.Int64 != 0,
		PrepareFailures: int(prepareFailures.Int64),
		ErrorMessage:    errorMessage.String,
		Duration:        time.Duration(durationMS.Int64) * time.Millisecond,
	}
	if started, err := time.Parse(time.RFC3339Nano, startedRaw.String); err == nil {
		run.StartedAt = started
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
