// Package main hosts the chmatch CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the run store and the
// Companies House client into the matching engine. Batch validation of a
// workbook lives under `validate`; `resolve` and `search` exercise the same
// engine for a single record or query, and `runs` reads back stored results.
//
// Keep this package thin: matching, persistence and I/O belong in the
// internal packages and are surfaced here through commands and flags.
package main
