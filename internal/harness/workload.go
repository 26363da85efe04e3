package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// CommandRunner executes the workload command and reports its exit code.
// Implementations return an error only when the command could not be run at
// all; a command that ran and failed reports through the exit code.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, env []string) (int, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, argv []string, env []string) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("empty workload command")
	}

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", argv[0], err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-waitCh:
	case <-ctx.Done():
		// Forward one interrupt and let the workload finish on its own.
		_ = cmd.Process.Signal(os.Interrupt)
		waitErr = <-waitCh
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitCodeFromState(exitErr), nil
		}
		return 0, fmt.Errorf("wait for %s: %w", argv[0], waitErr)
	}
	return 0, nil
}

func exitCodeFromState(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return 1
}
