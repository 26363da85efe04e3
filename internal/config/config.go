package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StateDir is the fixed temporary root holding the fakes3 pid file and
	// data directory. Every run on a machine shares it, which is why stale
	// state from a crashed run must be healed before a new service starts.
	StateDir string `toml:"state_dir"`
	// LogDir holds the harness log, the run-history database, and the
	// single-instance lock file.
	LogDir string `toml:"log_dir"`
}

// FakeS3 contains configuration for the ephemeral S3-compatible test server.
type FakeS3 struct {
	Binary              string `toml:"binary"`
	Port                int    `toml:"port"`
	Bucket              string `toml:"bucket"`
	StartTimeoutSeconds int    `toml:"start_timeout_seconds"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
}

// Step describes one package-state adjustment performed before the workload.
type Step struct {
	Package string `toml:"package"`
	Action  string `toml:"action"`
	Version string `toml:"version"`
}

// Prepare contains configuration for the pre-workload package preparation task.
type Prepare struct {
	PipBinary string `toml:"pip_binary"`
	Steps     []Step `toml:"step"`
}

// Workload contains configuration for the test workload invocation.
type Workload struct {
	Command     []string `toml:"command"`
	SilenceBoto bool     `toml:"silence_boto"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the harness.
//
// Configuration sections by subsystem:
//   - Paths: service state root and harness log directory
//   - FakeS3: ephemeral S3 server binary, port, bucket, readiness timing
//   - Prepare: pip binary and package-state steps applied before the workload
//   - Workload: default test command and client verbosity toggle
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	FakeS3   FakeS3   `toml:"fakes3"`
	Prepare  Prepare  `toml:"prepare"`
	Workload Workload `toml:"workload"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/accel-harness/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/accel-harness/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("accel-harness.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the harness writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PIDFile returns the path of the fakes3 pid file inside the state root.
func (c *Config) PIDFile() string {
	return filepath.Join(c.Paths.StateDir, "fakes3.pid")
}

// DataDir returns the path of the fakes3 data directory inside the state root.
func (c *Config) DataDir() string {
	return filepath.Join(c.Paths.StateDir, "fakes3")
}

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "accel-harness.lock")
}

// StartTimeout returns the readiness deadline as a duration.
func (c *Config) StartTimeout() time.Duration {
	return time.Duration(c.FakeS3.StartTimeoutSeconds) * time.Second
}

// PollInterval returns the readiness poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.FakeS3.PollIntervalSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
