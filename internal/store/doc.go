// Package store provides a SQLite-backed audit log of translations.
//
// Every translation attempt is appended as one record: the query that was
// compiled, a digest of the decision payload, and either the WHERE clause or
// the failure kind. Records are never updated.
//
// # Ordering
//
//   - Records carry a seq INTEGER assigned at write time (logical clock)
//   - All reads use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Timestamps are informational and never used for ordering
//
// # Idempotency
//
//   - Writes use ON CONFLICT(id) DO NOTHING
//   - Rewriting a record with a known id returns the stored record
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Payload digests are computed by ast.Digest (canonical JSON, SHA-256 with
// domain separation).
package store
