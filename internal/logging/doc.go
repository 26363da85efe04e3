// Package logging assembles the structured slog loggers used across the
// harness.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes attribute helpers plus standardized field keys so every
// component tags log lines the same way. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape and routing as the rest of the system.
package logging
