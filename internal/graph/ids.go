package graph

import "fmt"

// NodeID identifies a node within a Store.
type NodeID uint32

// SocketID identifies a socket within a Store.
type SocketID uint32

// LinkID identifies a link within a Store.
type LinkID uint32

func (id NodeID) String() string   { return fmt.Sprintf("n%d", uint32(id)) }
func (id SocketID) String() string { return fmt.Sprintf("s%d", uint32(id)) }
func (id LinkID) String() string   { return fmt.Sprintf("l%d", uint32(id)) }

// sequence is a monotonic id allocator.
//
// Every call to next returns a value strictly greater than the previous one,
// so ids are never reused even after the entity they named is removed.
// The first call returns 1; zero never names an entity.
//
// Not safe for concurrent use on its own; the Store's write lock guards it.
type sequence struct {
	last uint32
}

// next returns the next id and advances the sequence.
func (s *sequence) next() uint32 {
	s.last++
	return s.last
}
