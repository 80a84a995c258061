// Package graph provides the arena that owns a shader graph's nodes, sockets
// and links.
//
// Entities are keyed by opaque, monotonically increasing integer ids and are
// never reused within a Store's lifetime, not even after Disconnect or
// RemoveNode. There are no pointers between entities; every relation is an id.
//
// Structural invariants are enforced when links are created (Connect):
//   - the source socket is an Output, the target an Input
//   - both sockets carry the exact same ValueType (Color and Vec4 are distinct)
//   - an Input socket accepts at most one incoming link
//
// Acyclicity is NOT enforced here; the analysis package detects cycles before
// compilation.
//
// # Concurrency
//
// A Store follows a single-writer, many-readers discipline guarded by an
// RWMutex. Use Clone to take an independent snapshot for a compilation that
// must not observe later edits.
package graph
