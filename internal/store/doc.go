// Package store provides a SQLite-backed archive for experiment metadata
// documents.
//
// The archive is not a query-optimized database: each document is the
// serialized snapshot emitted by model.ToCompleteJSON, stored whole and
// content-addressed by its SHA-256 identity. Alongside the raw body, two
// flattened tables index what lineage queries actually need:
//   - relations: every provenance edge, queryable by source or target ID
//   - executions: one row per execution context, queryable by trace
//
// Writes are idempotent: saving the same document twice inserts nothing
// the second time (ON CONFLICT DO NOTHING on the content hash). Reads use
// explicit ORDER BY clauses so results are deterministic.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
