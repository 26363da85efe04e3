package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTeardownCommandRemovesStrayStateAndIsIdempotent(t *testing.T) {
	env := setupCLITestEnv(t)

	// Stray cache data left by a crashed run, with a read-only directory the
	// way fakes3 test fixtures leave them. No pid file, so nothing is killed.
	seed := filepath.Join(env.cfg.DataDir(), "bucket", "entry")
	if err := os.MkdirAll(seed, 0o755); err != nil {
		t.Fatalf("mkdir seed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(seed, "blob"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write blob: %v", err)
	}
	if err := os.Chmod(seed, 0o555); err != nil {
		t.Fatalf("chmod seed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chmod(seed, 0o755)
	})

	out, _, err := runCLI(t, []string{"teardown"}, env.configPath)
	if err != nil {
		t.Fatalf("teardown: %v", err)
	}
	requireContains(t, out, "Teardown complete")

	if _, err := os.Stat(env.cfg.DataDir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("data dir should be gone, stat err = %v", err)
	}

	out, _, err = runCLI(t, []string{"teardown"}, env.configPath)
	if err != nil {
		t.Fatalf("second teardown: %v", err)
	}
	requireContains(t, out, "Teardown complete")
}
