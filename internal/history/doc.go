// Package history persists a ledger of harness runs in SQLite.
//
// The Store records one row per orchestrated run (outcome, exit code,
// service and preparation results, timing) so operators can inspect
// recent runs after the fact. The ledger is diagnostic storage, not a
// coordination mechanism; nothing in the run path reads it back.
//
// Schema changes bump the version in schema.go; users clear the
// database to adopt the new schema.
package history
