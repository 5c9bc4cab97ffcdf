// Package batch drives a validation run over one worksheet.
//
// Records are resolved one at a time. Each outcome is persisted as soon as
// it is produced and counted into a Tally that the run returns; nothing is
// accumulated in package state. A panic while resolving a record becomes an
// error outcome for that row and the run continues. The record limit and
// context cancellation are both checked before each record starts.
//
// After matching, resolved registry fields are written back into the row,
// postcodes are mapped to headquarters districts, and the annotated sheet
// is saved with review rows highlighted.
package batch
