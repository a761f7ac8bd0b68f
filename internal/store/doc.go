// Package store provides SQLite-backed storage for expression catalogs.
//
// The store holds two kinds of records:
//   - Expressions: content-addressed trees with their text and LaTeX forms
//   - Batches: one save operation, labelling the expressions it stored
//
// # Identity
//
// Expression ids are content ids computed by document.ID: SHA-256 over the
// RFC 8785 canonical form with domain separation. Writing the same tree
// twice is a no-op (ON CONFLICT DO NOTHING). Batch ids are UUIDv7, so they
// sort by creation time; ordering inside the store still uses the seq
// column, never wall time.
//
// # Deterministic Query Results
//
// Every list query has an ORDER BY ending in id COLLATE BINARY so results
// are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
