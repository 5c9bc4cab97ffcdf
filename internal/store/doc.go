// Package store persists batch runs, per-record outcomes and cached registry
// responses in SQLite.
//
// The database lives in the configured data directory. Migrations are
// embedded and applied in a single transaction on Open.
package store
