package main

import (
	"os"
	"strings"
	"testing"
)

func TestEnvCommandWithoutServiceState(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"env"}, env.configPath)
	if err != nil {
		t.Fatalf("env: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected standing settings only, got %d lines: %q", len(lines), out)
	}
	if lines[0] != "PIP_ACCEL_AUTO_INSTALL=yes" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "PIP_ACCEL_SILENCE_BOTO=yes" {
		t.Fatalf("unexpected second line %q", lines[1])
	}
	if strings.Contains(out, "PIP_ACCEL_S3_URL") {
		t.Fatalf("service settings leaked without recorded state: %q", out)
	}
}

func TestEnvCommandWithRecordedService(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.MkdirAll(env.cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	if err := os.WriteFile(env.cfg.PIDFile(), []byte("4242\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	out, _, err := runCLI(t, []string{"env"}, env.configPath)
	if err != nil {
		t.Fatalf("env: %v", err)
	}

	requireContains(t, out, "PIP_ACCEL_S3_URL=http://127.0.0.1:12125\n")
	requireContains(t, out, "PIP_ACCEL_S3_CREATE_BUCKET=true\n")
	requireContains(t, out, "PIP_ACCEL_S3_BUCKET=pip-accel-test-bucket\n")
	requireContains(t, out, "PIP_ACCEL_FAKES3_PID=4242\n")
	requireContains(t, out, "PIP_ACCEL_FAKES3_ROOT="+env.cfg.DataDir()+"\n")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected full setting set, got %d lines: %q", len(lines), out)
	}
}

func TestEnvCommandOmitsBucketOnCI(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("CI", "true")

	if err := os.MkdirAll(env.cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	if err := os.WriteFile(env.cfg.PIDFile(), []byte("4242\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	out, _, err := runCLI(t, []string{"env"}, env.configPath)
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	requireContains(t, out, "PIP_ACCEL_S3_URL=")
	if strings.Contains(out, "PIP_ACCEL_S3_BUCKET=") {
		t.Fatalf("bucket should stay unpinned on CI: %q", out)
	}
}
