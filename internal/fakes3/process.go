package fakes3

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// ProcessController abstracts liveness probes and termination so tests can
// simulate exit races without real processes.
type ProcessController interface {
	Alive(pid int) bool
	Terminate(pid int) error
}

type unixProcessController struct{}

func (unixProcessController) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	// EPERM means the pid exists but belongs to another user.
	return err == nil || errors.Is(err, unix.EPERM)
}

func (unixProcessController) Terminate(pid int) error {
	if pid <= 0 {
		return nil
	}
	// No graceful window: the server has no state worth flushing. A pid that
	// already exited is a no-op, not an error.
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("kill pid %d: %w", pid, err)
	}
	return nil
}

// Process is a service instance launched by this harness run.
type Process interface {
	PID() int
	// Done is closed once the process has exited.
	Done() <-chan struct{}
}

// Launcher starts the service binary in the background.
type Launcher interface {
	Launch(binary string, args []string) (Process, error)
}

type execLauncher struct{}

func (execLauncher) Launch(binary string, args []string) (Process, error) {
	cmd := exec.Command(binary, args...)
	// Own process group: terminal interrupts reach the harness first so
	// teardown, not the shell, terminates the server.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	proc := &execProcess{pid: cmd.Process.Pid, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(proc.done)
	}()
	return proc, nil
}

type execProcess struct {
	pid  int
	done chan struct{}
}

func (p *execProcess) PID() int { return p.pid }

func (p *execProcess) Done() <-chan struct{} { return p.done }

func writePIDFile(path string, pid int) error {
	value := strconv.Itoa(pid) + "\n"
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// readPIDFile returns the recorded pid, or 0 with fs.ErrNotExist when no pid
// file exists. A malformed file yields an error with the offending content.
func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, err
		}
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(text)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %s: malformed content %q", path, text)
	}
	return pid, nil
}
