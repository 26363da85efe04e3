// Package harness coordinates one full test run: it starts the ephemeral
// fake S3 service, drives package preparation concurrently, composes the
// workload environment, executes the workload, and tears the service down
// on every exit path.
//
// The Coordinator owns run sequencing and the single-instance lock. Service
// lifecycle details live in fakes3, package state in prepare, environment
// composition in runenv. A run's exit code is the workload's own exit code;
// failures before the workload launches surface as SetupError and map to a
// distinct process exit status.
package harness
