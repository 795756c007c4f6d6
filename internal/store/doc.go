// Package store holds source records.
//
// Two stores share the same append-only contract:
//   - Memory: the in-process Source Record Store a session accumulates
//     announcements into before each resolution run
//   - Store: SQLite-backed durable storage for sessions, their sources and
//     cached resolution output
//
// # Critical Patterns
//
// Append-only records
//   - A stored source is never mutated
//   - Re-appending identical content is a no-op; different content under
//     an existing id is ErrConflictingSource
//
// Logical time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Batch order is reconstructed as ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Content-addressed cache
//   - Resolutions are keyed by ir.BatchHash of the exact batch they came from
//   - Any new source changes the hash, so stale output is never served
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
