package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	// validate picks up the config written under the fake HOME
	out, _, err := runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Fake S3 service: fakes3")

	// config init to temp location
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// a second init without --overwrite refuses to clobber
	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err == nil {
		t.Fatal("expected error when target already exists")
	}
	requireContains(t, err.Error(), "use --overwrite")

	_, _, err = runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, env.configPath)
	if err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsMissingFileDefaults(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(env.baseDir, "nowhere", "config.toml")
	out, _, err := runCLI(t, []string{"config", "validate"}, missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config file did not exist; defaults were used")
}
