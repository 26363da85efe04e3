package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/theyoprst/pip-accel/internal/config"
	"github.com/theyoprst/pip-accel/internal/deps"
	"github.com/theyoprst/pip-accel/internal/fakes3"
	"github.com/theyoprst/pip-accel/internal/history"
	"github.com/theyoprst/pip-accel/internal/logging"
	"github.com/theyoprst/pip-accel/internal/prepare"
	"github.com/theyoprst/pip-accel/internal/runenv"
)

// ServiceController manages the ephemeral cache-backend service.
type ServiceController interface {
	Start(ctx context.Context) (*fakes3.Handle, error)
	AwaitReady(ctx context.Context) (fakes3.Readiness, error)
	Teardown() error
}

// Preparer drives the package preparation steps.
type Preparer interface {
	Run(ctx context.Context) prepare.Result
}

const (
	phaseServiceStarting   = "service-starting"
	phaseAwaitingReadiness = "awaiting-readiness"
	phasePreparationJoin   = "preparation-join"
	phaseWorkloadRunning   = "workload-running"
	phaseTearingDown       = "tearing-down"
)

// Option customizes a Coordinator, primarily for tests.
type Option func(*Coordinator)

// WithServiceController overrides the cache-backend controller.
func WithServiceController(service ServiceController) Option {
	return func(c *Coordinator) {
		c.service = service
	}
}

// WithPreparer overrides the preparation runner.
func WithPreparer(preparer Preparer) Option {
	return func(c *Coordinator) {
		c.prep = preparer
	}
}

// WithCommandRunner overrides the workload executor.
func WithCommandRunner(runner CommandRunner) Option {
	return func(c *Coordinator) {
		c.runner = runner
	}
}

// WithHistoryStore enables run-ledger recording.
func WithHistoryStore(store *history.Store) Option {
	return func(c *Coordinator) {
		c.store = store
	}
}

// WithLookPath overrides binary resolution.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(c *Coordinator) {
		c.lookPath = lookPath
	}
}

// WithEnviron overrides the parent environment snapshot.
func WithEnviron(environ func() []string) Option {
	return func(c *Coordinator) {
		c.environ = environ
	}
}

// Coordinator sequences one harness run end to end.
type Coordinator struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  ServiceController
	prep     Preparer
	runner   CommandRunner
	store    *history.Store
	lock     *flock.Flock
	lookPath func(string) (string, error)
	environ  func() []string
}

// RunOptions carries per-run inputs.
type RunOptions struct {
	// Workload overrides the configured workload command when non-empty.
	Workload []string
}

// Result captures the observable outcome of a run.
type Result struct {
	RunID          string
	Workload       []string
	ExitCode       int
	ServiceStarted bool
	ServiceReady   bool
	Prepare        prepare.Result
	StartedAt      time.Time
	Duration       time.Duration
}

// NewCoordinator builds a run coordinator from the configuration.
func NewCoordinator(cfg *config.Config, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "harness"),
		runner:   execRunner{},
		lock:     flock.New(cfg.LockPath()),
		lookPath: exec.LookPath,
		environ:  os.Environ,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.service == nil {
		c.service = fakes3.NewController(cfg, logger)
	}
	if c.prep == nil {
		c.prep = prepare.NewRunner(cfg, logger)
	}
	return c
}

// Run performs one orchestrated harness run. The returned error is non-nil
// only for failures before the workload launched; a workload that ran and
// failed reports through Result.ExitCode.
func (c *Coordinator) Run(ctx context.Context, opts RunOptions) (Result, error) {
	result := Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Workload:  opts.Workload,
	}
	if len(result.Workload) == 0 {
		result.Workload = c.cfg.Workload.Command
	}

	logger := c.logger.With(logging.String(logging.FieldRunID, result.RunID))
	logger.Info("run starting", logging.String("workload", strings.Join(result.Workload, " ")))

	err := c.run(ctx, logger, &result)
	result.Duration = time.Since(result.StartedAt)
	c.record(logger, result, err)

	if err != nil {
		logger.Error("run aborted before workload", logging.Error(err))
		return result, err
	}
	logger.Info("run finished",
		logging.Int(logging.FieldExitCode, result.ExitCode),
		logging.Duration("duration", result.Duration))
	return result, nil
}

func (c *Coordinator) run(ctx context.Context, logger *slog.Logger, result *Result) error {
	if len(result.Workload) == 0 {
		return &SetupError{Err: errors.New("no workload command configured")}
	}
	if err := c.cfg.EnsureDirectories(); err != nil {
		return &SetupError{Err: err}
	}

	ok, err := c.lock.TryLock()
	if err != nil {
		return &SetupError{Err: fmt.Errorf("acquire run lock: %w", err)}
	}
	if !ok {
		return &SetupError{Err: ErrActiveRun}
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			logger.Warn("release run lock", logging.Error(err))
		}
	}()

	c.logDependencySnapshot(logger)

	prepCtx, cancelPrep := context.WithCancel(ctx)
	defer cancelPrep()
	prepCh := make(chan prepare.Result, 1)
	go func() { prepCh <- c.prep.Run(prepCtx) }()

	var handle *fakes3.Handle
	if binPath, lookErr := c.lookPath(c.cfg.FakeS3.Binary); lookErr == nil {
		logger.Info("starting cache backend",
			logging.String(logging.FieldPhase, phaseServiceStarting),
			logging.String(logging.FieldBinary, binPath))
		defer func() {
			logger.Info("tearing down cache backend",
				logging.String(logging.FieldPhase, phaseTearingDown))
			if err := c.service.Teardown(); err != nil {
				logger.Warn("teardown left residue", logging.Error(err))
			}
		}()

		started, startErr := c.service.Start(ctx)
		if startErr != nil {
			return &SetupError{Err: fmt.Errorf("start cache backend: %w", startErr)}
		}
		handle = started
		result.ServiceStarted = true

		logger.Info("waiting for cache backend",
			logging.String(logging.FieldPhase, phaseAwaitingReadiness),
			logging.Int(logging.FieldPort, handle.Port))
		readiness, readyErr := c.service.AwaitReady(ctx)
		if readyErr != nil {
			return &SetupError{Err: fmt.Errorf("cache backend readiness: %w", readyErr)}
		}
		result.ServiceReady = readiness == fakes3.Ready
		if !result.ServiceReady {
			logger.Warn("cache backend not ready before deadline, continuing degraded")
		}
	} else {
		logger.Warn("cache backend binary unavailable, skipping that coverage",
			logging.String(logging.FieldBinary, c.cfg.FakeS3.Binary))
	}

	logger.Info("waiting for preparation",
		logging.String(logging.FieldPhase, phasePreparationJoin))
	result.Prepare = <-prepCh
	if failed := result.Prepare.Failed(); failed > 0 {
		logger.Warn("preparation finished with failures",
			logging.Int("failed_steps", failed),
			logging.Error(result.Prepare.Err()))
	}

	env := runenv.Compose(handle, runenv.Options{
		CI:          runenv.DetectCI(c.environ()),
		SilenceBoto: c.cfg.Workload.SilenceBoto,
		Bucket:      c.cfg.FakeS3.Bucket,
	})
	logger.Info("running workload",
		logging.String(logging.FieldPhase, phaseWorkloadRunning),
		logging.Int("settings", env.Len()))
	code, runErr := c.runner.Run(ctx, result.Workload, append(c.environ(), env.Pairs()...))
	if runErr != nil {
		return &SetupError{Err: fmt.Errorf("launch workload: %w", runErr)}
	}
	result.ExitCode = code
	return nil
}

func (c *Coordinator) logDependencySnapshot(logger *slog.Logger) {
	for _, status := range deps.CheckBinaries(deps.ForConfig(c.cfg)) {
		if status.Available {
			continue
		}
		logger.Warn("dependency unavailable",
			logging.String("name", status.Name),
			logging.String(logging.FieldBinary, status.Command),
			logging.Bool("optional", status.Optional))
	}
}

func (c *Coordinator) record(logger *slog.Logger, result Result, runErr error) {
	if c.store == nil {
		return
	}
	run := history.Run{
		RunID:           result.RunID,
		Outcome:         history.OutcomeCompleted,
		ExitCode:        result.ExitCode,
		Workload:        strings.Join(result.Workload, " "),
		ServiceStarted:  result.ServiceStarted,
		ServiceReady:    result.ServiceReady,
		PrepareFailures: result.Prepare.Failed(),
		StartedAt:       result.StartedAt,
		Duration:        result.Duration,
	}
	if runErr != nil {
		run.Outcome = history.OutcomeSetupFailed
		run.ExitCode = SetupExitCode
		run.ErrorMessage = runErr.Error()
	}
	if err := c.store.Record(context.Background(), run); err != nil {
		logger.Warn("record run history", logging.Error(err))
	}
}

// ExitCodeFor translates a run outcome into the orchestrator's process exit
// status.
func ExitCodeFor(result Result, err error) int {
	if err != nil {
		return SetupExitCode
	}
	return result.ExitCode
}
