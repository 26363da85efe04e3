// Package preflight provides readiness checks for the filesystem paths a
// harness run writes to. Binary availability lives in the deps package.
//
// The CLI "check" command renders every check so a doomed run fails early
// and visibly.
package preflight
