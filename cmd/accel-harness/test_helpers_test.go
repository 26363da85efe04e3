package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theyoprst/pip-accel/internal/config"
	"github.com/theyoprst/pip-accel/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CI", "")

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.FakeS3.StartTimeoutSeconds = 1
	cfg.FakeS3.PollIntervalSeconds = 1

	configPath := filepath.Join(homeDir, ".config", "accel-harness", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\nstate_dir = %q\nlog_dir = %q\n\n", cfg.Paths.StateDir, cfg.Paths.LogDir)
	fmt.Fprintf(&b, "[fakes3]\nbinary = %q\nport = %d\nbucket = %q\nstart_timeout_seconds = %d\npoll_interval_seconds = %d\n\n",
		cfg.FakeS3.Binary, cfg.FakeS3.Port, cfg.FakeS3.Bucket, cfg.FakeS3.StartTimeoutSeconds, cfg.FakeS3.PollIntervalSeconds)
	fmt.Fprintf(&b, "[prepare]\npip_binary = %q\n\n", cfg.Prepare.PipBinary)
	b.WriteString("[workload]\ncommand = [")
	for i, arg := range cfg.Workload.Command {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", arg)
	}
	fmt.Fprintf(&b, "]\nsilence_boto = %t\n", cfg.Workload.SilenceBoto)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
