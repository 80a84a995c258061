// Package analysis holds the read-only structural passes over a graph.Store:
// cycle detection, topological ordering and reachability.
//
// Edges run from the node owning a link's output socket to the node owning
// its input socket, so a node always sorts after everything it reads from.
// None of the passes mutate the store; several may run at once as long as
// nothing writes to it concurrently.
package analysis
