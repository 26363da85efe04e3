// Package logs reads the harness log file for the `logs` command.
//
// It tails with bounded memory, supports a negative offset for "last N
// lines", and resumes from a previously returned offset so follow mode can
// poll for fresh lines. Callers supply a context so polling stops cleanly
// when the CLI exits.
package logs
