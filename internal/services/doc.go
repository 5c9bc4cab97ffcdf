// Package services defines shared utilities consumed by the matching engine,
// the registry collaborators, and the batch runner.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, workbook rows, match tiers, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so lookup failures can be
//     classified (not found, timeout, transient) without string matching.
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across a batch run.
package services
