// Package preflight provides readiness checks for the filesystem paths and
// the registry API that a batch run depends on.
//
// The validate command calls RunAll before loading the workbook. If any
// check fails the run stops before a single registry request is spent.
package preflight
