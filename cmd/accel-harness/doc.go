// Package main hosts the accel-harness CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into harness
// runs, standalone preparation, manual teardown, environment previews, and
// preflight checks. It centralizes configuration resolution and logging setup
// so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
