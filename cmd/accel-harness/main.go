package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/theyoprst/pip-accel/internal/harness"
)

// exitCodeError carries a workload exit status through cobra without
// printing anything; the workload already wrote its own output.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("workload exited with status %d", e.code)
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if harness.IsSetup(err) {
			os.Exit(harness.SetupExitCode)
		}
		os.Exit(1)
	}
}
