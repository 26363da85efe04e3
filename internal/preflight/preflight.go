package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/theyoprst/pip-accel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config. Directories
// are expected to exist already; callers ensure them before checking.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckDirectoryAccess("State root", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}

// CheckDirectoryAccess verifies the path is a directory this process can
// read, write, and traverse. Teardown deletes inside the state root, so
// write access there is a hard requirement.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
