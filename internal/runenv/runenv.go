// Package runenv composes the environment settings injected into the
// workload process. Settings are derived from the service handle and run
// context, never read back from ambient process state.
package runenv

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theyoprst/pip-accel/internal/fakes3"
)

// Environment variable names consumed by the workload's accelerator under test.
const (
	// EnvAutoInstall grants standing permission to mutate system packages.
	EnvAutoInstall = "PIP_ACCEL_AUTO_INSTALL"
	// EnvSilenceBoto suppresses the boto client's log output.
	EnvSilenceBoto = "PIP_ACCEL_SILENCE_BOTO"
	// EnvS3URL is the base endpoint of the cache's storage backend.
	EnvS3URL = "PIP_ACCEL_S3_URL"
	// EnvS3Bucket pins the bucket name for local runs.
	EnvS3Bucket = "PIP_ACCEL_S3_BUCKET"
	// EnvS3CreateBucket enables bucket auto-creation on first use.
	EnvS3CreateBucket = "PIP_ACCEL_S3_CREATE_BUCKET"
	// EnvFakeS3Root exposes the backend's data directory so tests can chmod
	// it to simulate a read-only remote store.
	EnvFakeS3Root = "PIP_ACCEL_FAKES3_ROOT"
	// EnvFakeS3PID exposes the backend's process id so tests can kill it
	// mid-run to validate cache failure handling.
	EnvFakeS3PID = "PIP_ACCEL_FAKES3_PID"
)

// Options carries the run context the composition depends on.
type Options struct {
	// CI marks an isolated CI run: the fixed local bucket name is omitted.
	CI bool
	// SilenceBoto controls the boto verbosity setting.
	SilenceBoto bool
	// Bucket is the fixed bucket name injected for local runs.
	Bucket string
}

// Environment is an immutable set of KEY=VALUE settings for the workload.
type Environment struct {
	values map[string]string
}

// Compose derives the workload environment. With no service handle none of
// the storage-backend settings appear: the workload detects their absence and
// skips that portion of its coverage.
func Compose(handle *fakes3.Handle, opts Options) Environment {
	values := map[string]string{
		EnvAutoInstall: "yes",
		EnvSilenceBoto: boolValue(opts.SilenceBoto),
	}

	if handle != nil {
		values[EnvS3URL] = handle.URL()
		values[EnvS3CreateBucket] = "true"
		values[EnvFakeS3Root] = handle.DataDir
		values[EnvFakeS3PID] = strconv.Itoa(handle.PID)
		if !opts.CI {
			values[EnvS3Bucket] = opts.Bucket
		}
	}

	return Environment{values: values}
}

// Get reports a composed setting.
func (e Environment) Get(key string) (string, bool) {
	value, ok := e.values[key]
	return value, ok
}

// Len returns the number of composed settings.
func (e Environment) Len() int {
	return len(e.values)
}

// Pairs renders the settings as sorted KEY=VALUE strings, ready to append to
// the parent environment of an exec.Cmd.
func (e Environment) Pairs() []string {
	pairs := make([]string, 0, len(e.values))
	for key, value := range e.values {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(pairs)
	return pairs
}

// DetectCI reports whether the provided environ snapshot (os.Environ form)
// marks a CI run. CI systems conventionally export CI with a truthy value.
func DetectCI(environ []string) bool {
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found || key != "CI" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "yes", "true", "on":
			return true
		default:
			return false
		}
	}
	return false
}

func boolValue(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
