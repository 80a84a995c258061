// Package store provides SQLite-backed durable storage for compilation runs.
//
// Each run of the compiler can be recorded with the hashes of its input graph
// and output program, the emitted WGSL and every diagnostic it produced.
// The log answers "what did this graph compile to, and when did that change".
//
// # Ordering
//
// Rows are ordered by seq, a per-database logical counter assigned at insert
// time, never by created_at. Listing is ORDER BY seq DESC, so the newest run
// comes first regardless of wall-clock skew.
//
// # Identity
//
// Run ids are UUIDv7 strings by default. Tests inject a sequential
// IDGenerator and a fixed clock so recorded rows are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
