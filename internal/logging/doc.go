// Package logging assembles structured slog loggers and formatting helpers used
// across chmatch.
//
// It owns the console and JSON handlers, centralizes level and output plumbing
// (stdout plus the session log file), and exposes context-aware helpers so the
// resolver and batch runner tag log lines with run IDs, workbook rows, and
// match tiers automatically. A no-op logger is provided for tests.
package logging
