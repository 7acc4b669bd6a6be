// Package history keeps a SQLite ledger of batch runs and the outcome of
// every file in them. It records what happened; it is never used to resume a
// batch.
package history
