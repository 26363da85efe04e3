package main

import (
	"strings"
	"testing"
)

func TestCheckCommandPassesWithStubbedBinaries(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "[OK] Ready (command: fakes3)")
	requireContains(t, out, "[OK] Ready (command: pip)")
	requireContains(t, out, "== Paths ==")
	requireContains(t, out, "State root")
	requireContains(t, out, "Log directory")
}

func TestCheckCommandTreatsMissingServiceAsOptional(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.FakeS3.Binary = "accel-harness-no-such-fakes3"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("missing optional dependency should not fail check: %v", err)
	}
	requireContains(t, out, "[WARN]")
	requireContains(t, out, "(optional)")
}

func TestCheckCommandFailsOnMissingRequiredBinary(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Prepare.PipBinary = "accel-harness-no-such-pip"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail with pip missing")
	}
	requireContains(t, err.Error(), "missing required dependencies: pip")
	requireContains(t, out, "[ERROR]")
	if !strings.Contains(out, "accel-harness-no-such-pip") {
		t.Fatalf("expected detail naming the missing binary:\n%s", out)
	}
}
