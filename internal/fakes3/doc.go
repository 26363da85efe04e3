// Package fakes3 owns the lifecycle of the ephemeral S3-compatible server the
// workload's cache-backend tests run against.
//
// The controller launches the server against a fresh data directory under a
// fixed state root, records its pid in a crash-surviving pid file, polls TCP
// readiness within a bounded deadline, and tears all of it down again. Stale
// state left by a crashed prior run is healed before a new instance starts.
// Teardown is forceful and idempotent: the server holds no state worth
// flushing, and a second teardown finds nothing to do.
package fakes3
