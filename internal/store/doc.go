// Package store provides SQLite-backed history of verification runs.
//
// Each run records the report fingerprint, the model fingerprint and every
// violation, so two runs over the same codebase can be compared without
// re-reading it.
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER, assigned on insert, never by timestamps
//   - Violations keep report order via their own seq within a run
//   - All queries include an explicit ORDER BY
//
// # Idempotency
//
//   - Run IDs are UUIDs; recording the same ID twice is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
