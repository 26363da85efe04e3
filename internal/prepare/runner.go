// Package prepare forces named pip packages into the installed/absent/version
// states the workload's assertions assume, ahead of workload launch.
package prepare

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/theyoprst/pip-accel/internal/config"
	"github.com/theyoprst/pip-accel/internal/logging"
)

// Executor abstracts pip invocations for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner drives the configured package-state steps through pip.
//
// Steps run sequentially and independently: a failing step is recorded and
// the remaining steps still execute. The aggregate outcome is advisory; the
// caller surfaces it but the run proceeds, since the workload's own
// assertions are the authority on package state.
type Runner struct {
	pip    string
	steps  []config.Step
	logger *slog.Logger
	exec   Executor
}

// NewRunner constructs a runner from harness configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		pip:    cfg.Prepare.PipBinary,
		steps:  cfg.Prepare.Steps,
		logger: logging.NewComponentLogger(logger, "prepare"),
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// StepResult captures the outcome of a single package-state step.
type StepResult struct {
	Step config.Step
	Err  error
}

// Result aggregates all step outcomes.
type Result struct {
	Steps []StepResult
}

// Failed returns the number of steps that reported an error.
func (r Result) Failed() int {
	failed := 0
	for _, step := range r.Steps {
		if step.Err != nil {
			failed++
		}
	}
	return failed
}

// Err summarizes the aggregate outcome; nil when every step succeeded.
func (r Result) Err() error {
	failed := r.Failed()
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d preparation steps failed", failed, len(r.Steps))
}

// Run executes every configured step. It never aborts early on a step
// failure; context cancellation fails the remaining steps individually.
func (r *Runner) Run(ctx context.Context) Result {
	result := Result{Steps: make([]StepResult, 0, len(r.steps))}
	for _, step := range r.steps {
		err := r.runStep(ctx, step)
		if err != nil {
			r.logger.Warn("preparation step failed",
				logging.String(logging.FieldPackage, step.Package),
				logging.String("action", step.Action),
				logging.Error(err))
		} else {
			r.logger.Info("preparation step complete",
				logging.String(logging.FieldPackage, step.Package),
				logging.String("action", step.Action))
		}
		result.Steps = append(result.Steps, StepResult{Step: step, Err: err})
	}
	return result
}

func (r *Runner) runStep(ctx context.Context, step config.Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	args, err := pipArgs(step)
	if err != nil {
		return err
	}
	r.logger.Info("adjusting package state",
		logging.String(logging.FieldPackage, step.Package),
		logging.String("action", step.Action),
		logging.String("version", step.Version))
	if err := r.exec.Run(ctx, r.pip, args, func(line string) {
		r.logger.Debug("pip output", logging.String("line", line))
	}); err != nil {
		return fmt.Errorf("%s %s: %w", step.Action, step.Package, err)
	}
	return nil
}

func pipArgs(step config.Step) ([]string, error) {
	switch step.Action {
	case "install":
		return []string{"install", step.Package + "==" + step.Version}, nil
	case "remove":
		return []string{"uninstall", "--yes", step.Package}, nil
	default:
		return nil, fmt.Errorf("unsupported action %q", step.Action)
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
