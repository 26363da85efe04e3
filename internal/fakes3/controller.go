package fakes3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/theyoprst/pip-accel/internal/config"
	"github.com/theyoprst/pip-accel/internal/fileutil"
	"github.com/theyoprst/pip-accel/internal/logging"
)

// Handle records a launched service instance. The pid file is the durable
// copy: it outlives a crashed harness so the next run can heal.
type Handle struct {
	PID     int
	Port    int
	DataDir string
	PIDFile string
}

// URL returns the base endpoint the workload's storage client should use.
func (h *Handle) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", h.Port)
}

// Readiness is the outcome of polling the service port within the deadline.
type Readiness int

const (
	// Ready means a TCP connection to the service port succeeded.
	Ready Readiness = iota
	// TimedOut means the deadline elapsed without a successful connection.
	// This degrades the run, it does not fail it.
	TimedOut
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case TimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Option configures the controller.
type Option func(*Controller)

// WithProcessController injects a custom process controller (primarily for tests).
func WithProcessController(procs ProcessController) Option {
	return func(c *Controller) {
		if procs != nil {
			c.procs = procs
		}
	}
}

// WithLauncher injects a custom launcher (primarily for tests).
func WithLauncher(launcher Launcher) Option {
	return func(c *Controller) {
		if launcher != nil {
			c.launcher = launcher
		}
	}
}

// Controller owns the service state under the configured state root.
type Controller struct {
	binary       string
	port         int
	stateDir     string
	dataDir      string
	pidFile      string
	startTimeout time.Duration
	pollInterval time.Duration

	logger   *slog.Logger
	procs    ProcessController
	launcher Launcher

	handle  *Handle
	process Process
}

// NewController constructs a controller from harness configuration.
func NewController(cfg *config.Config, logger *slog.Logger, opts ...Option) *Controller {
	ctrl := &Controller{
		binary:       cfg.FakeS3.Binary,
		port:         cfg.FakeS3.Port,
		stateDir:     cfg.Paths.StateDir,
		dataDir:      cfg.DataDir(),
		pidFile:      cfg.PIDFile(),
		startTimeout: cfg.StartTimeout(),
		pollInterval: cfg.PollInterval(),
		logger:       logging.NewComponentLogger(logger, "fakes3"),
		procs:        unixProcessController{},
		launcher:     execLauncher{},
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl
}

// Handle returns the current handle, or nil when no service is recorded.
func (c *Controller) Handle() *Handle {
	return c.handle
}

// RecordedHandle rebuilds a handle from the on-disk pid file without starting
// anything. It reports false when no prior run left a readable pid behind.
func (c *Controller) RecordedHandle() (*Handle, bool) {
	pid, err := readPIDFile(c.pidFile)
	if err != nil {
		return nil, false
	}
	return &Handle{PID: pid, Port: c.port, DataDir: c.dataDir, PIDFile: c.pidFile}, true
}

// Start launches a fresh service instance. Any state recorded by a prior run
// is torn down first so cached entries never leak across runs.
func (c *Controller) Start(ctx context.Context) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.hasRecordedState() {
		c.logger.Warn("prior service state found, healing before start",
			logging.String("pid_file", c.pidFile))
		if err := c.Teardown(); err != nil {
			return nil, fmt.Errorf("heal stale service state: %w", err)
		}
	}

	if err := os.MkdirAll(c.stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state root: %w", err)
	}
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	args := []string{"--root", c.dataDir, "--port", strconv.Itoa(c.port)}
	proc, err := c.launcher.Launch(c.binary, args)
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", c.binary, err)
	}

	if err := writePIDFile(c.pidFile, proc.PID()); err != nil {
		// The server is already running; without a pid file nothing would
		// find it again, so take it down now.
		_ = c.procs.Terminate(proc.PID())
		return nil, err
	}

	c.process = proc
	c.handle = &Handle{PID: proc.PID(), Port: c.port, DataDir: c.dataDir, PIDFile: c.pidFile}
	c.logger.Info("service launched",
		logging.Int(logging.FieldPID, c.handle.PID),
		logging.Int(logging.FieldPort, c.port),
		logging.String("data_dir", c.dataDir))
	return c.handle, nil
}

// AwaitReady polls the service port until it accepts a connection or the
// deadline elapses. Refused connections are progress, not errors; the
// launched process exiting before it is reachable is a startup failure.
func (c *Controller) AwaitReady(ctx context.Context) (Readiness, error) {
	if c.handle == nil {
		return TimedOut, errors.New("await readiness: service not started")
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(c.handle.Port))
	deadline := time.Now().Add(c.startTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if c.process != nil {
			select {
			case <-c.process.Done():
				return TimedOut, fmt.Errorf("%s exited before accepting connections", c.binary)
			default:
			}
		}

		conn, err := net.DialTimeout("tcp", addr, c.pollInterval)
		if err == nil {
			_ = conn.Close()
			c.logger.Info("service ready",
				logging.Int(logging.FieldPort, c.handle.Port),
				logging.Int("attempts", attempt))
			return Ready, nil
		}

		if time.Now().After(deadline) {
			c.logger.Warn("service not reachable within deadline",
				logging.Int(logging.FieldPort, c.handle.Port),
				logging.Duration("deadline", c.startTimeout))
			return TimedOut, nil
		}

		c.logger.Info("waiting for service to accept connections",
			logging.Int(logging.FieldPort, c.handle.Port),
			logging.Int("attempt", attempt))

		select {
		case <-ctx.Done():
			return TimedOut, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Teardown removes every trace of the service: terminates the recorded pid if
// it is still alive, deletes the data directory (forcing read-only entries
// writable first), and removes the pid file. Calling it with no recorded
// state is a no-op, so it is safe to run twice or against a partial start.
func (c *Controller) Teardown() error {
	if !c.hasRecordedState() {
		c.handle = nil
		c.process = nil
		return nil
	}

	pid, err := readPIDFile(c.pidFile)
	switch {
	case err == nil:
		if c.procs.Alive(pid) {
			c.logger.Info("terminating service", logging.Int(logging.FieldPID, pid))
			if termErr := c.procs.Terminate(pid); termErr != nil {
				// Races with a process exiting on its own are expected.
				c.logger.Warn("terminate service", logging.Error(termErr))
			}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		c.logger.Warn("ignoring unreadable pid file", logging.Error(err))
	}

	var firstErr error
	if err := fileutil.RemoveTree(c.dataDir); err != nil {
		firstErr = fmt.Errorf("remove data directory: %w", err)
	}
	if err := os.Remove(c.pidFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if firstErr == nil {
			firstErr = fmt.Errorf("remove pid file: %w", err)
		}
	}

	c.handle = nil
	c.process = nil
	if firstErr == nil {
		c.logger.Info("service state removed")
	}
	return firstErr
}

func (c *Controller) hasRecordedState() bool {
	if _, err := os.Stat(c.pidFile); err == nil {
		return true
	}
	if _, err := os.Stat(c.dataDir); err == nil {
		return true
	}
	return false
}
