package harness

import "errors"

// SetupExitCode is the process exit status for failures before the workload
// launches, kept distinct from anything the workload itself returns. 70
// mirrors the conventional EX_SOFTWARE status.
const SetupExitCode = 70

// ErrActiveRun reports that another harness run holds the instance lock.
var ErrActiveRun = errors.New("another harness run is already active")

// SetupError marks a failure that aborted the run before the workload
// launched. Teardown has still been attempted by the time it is returned.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// IsSetup reports whether err marks a pre-workload failure.
func IsSetup(err error) bool {
	var setupErr *SetupError
	return errors.As(err, &setupErr)
}
