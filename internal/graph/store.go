package graph

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// Store owns every node, socket and link of one graph.
// The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex

	nodes   map[NodeID]*Node
	sockets map[SocketID]*Socket
	links   map[LinkID]*Link

	// linkInto indexes the single incoming link of each connected input.
	linkInto map[SocketID]LinkID
	// linksOut indexes outgoing links per output socket, in creation order.
	linksOut map[SocketID][]LinkID

	nodeSeq   sequence
	socketSeq sequence
	linkSeq   sequence
}

// New creates an empty graph store.
func New() *Store {
	return &Store{
		nodes:    make(map[NodeID]*Node),
		sockets:  make(map[SocketID]*Socket),
		links:    make(map[LinkID]*Link),
		linkInto: make(map[SocketID]LinkID),
		linksOut: make(map[SocketID][]LinkID),
	}
}

// AddNode creates a node whose inputs are all required.
func (s *Store) AddNode(kind Kind, pos Position, inputs []Port, outputs []Port) NodeID {
	defs := make([]InputDef, len(inputs))
	for i, p := range inputs {
		defs[i] = InputDef{Port: p}
	}
	return s.AddNodeWithConfig(kind, pos, defs, outputs)
}

// AddNodeWithConfig creates a node with per-input resolution rules.
// Sockets are created in declaration order, inputs first.
func (s *Store) AddNodeWithConfig(kind Kind, pos Position, inputs []InputDef, outputs []Port) NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := &Node{
		ID:       NodeID(s.nodeSeq.next()),
		Kind:     kind,
		Position: pos,
	}

	for _, def := range inputs {
		sock := &Socket{
			ID:        SocketID(s.socketSeq.next()),
			Node:      node.ID,
			Direction: Input,
			Type:      def.Type,
			Name:      def.Name,
			Config:    &InputConfig{Optional: def.Optional},
		}
		if def.Default != nil {
			lit := *def.Default
			sock.Config.Default = &lit
		}
		s.sockets[sock.ID] = sock
		node.Inputs = append(node.Inputs, sock.ID)
	}

	for _, port := range outputs {
		sock := &Socket{
			ID:        SocketID(s.socketSeq.next()),
			Node:      node.ID,
			Direction: Output,
			Type:      port.Type,
			Name:      port.Name,
		}
		s.sockets[sock.ID] = sock
		node.Outputs = append(node.Outputs, sock.ID)
	}

	s.nodes[node.ID] = node
	return node.ID
}

// Connect links an output socket to an input socket.
//
// Checks run in order and the first failure is returned:
//  1. SocketNotFound - either socket is unknown
//  2. WrongDirection - from is not an Output, or to is not an Input
//  3. TypeMismatch - the socket types differ (no implicit coercion at link time)
//  4. InputAlreadyConnected - to already has an incoming link
func (s *Store) Connect(from, to SocketID) (LinkID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sockets[from]
	if !ok {
		return 0, &Error{Kind: SocketNotFound, Socket: from}
	}
	dst, ok := s.sockets[to]
	if !ok {
		return 0, &Error{Kind: SocketNotFound, Socket: to}
	}

	if src.Direction != Output {
		return 0, &Error{Kind: WrongDirection, Socket: from, Expected: Output, Found: src.Direction}
	}
	if dst.Direction != Input {
		return 0, &Error{Kind: WrongDirection, Socket: to, Expected: Input, Found: dst.Direction}
	}

	if src.Type != dst.Type {
		return 0, &Error{Kind: TypeMismatch, Socket: to, From: src.Type, To: dst.Type}
	}

	if _, taken := s.linkInto[to]; taken {
		return 0, &Error{Kind: InputAlreadyConnected, Socket: to}
	}

	link := &Link{ID: LinkID(s.linkSeq.next()), From: from, To: to}
	s.links[link.ID] = link
	s.linkInto[to] = link.ID
	s.linksOut[from] = append(s.linksOut[from], link.ID)
	return link.ID, nil
}

// Disconnect removes a link. It returns false if the link does not exist.
// The link's id is never handed out again.
func (s *Store) Disconnect(id LinkID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLinkLocked(id)
}

func (s *Store) removeLinkLocked(id LinkID) bool {
	link, ok := s.links[id]
	if !ok {
		return false
	}
	delete(s.links, id)
	delete(s.linkInto, link.To)

	out := slices.DeleteFunc(s.linksOut[link.From], func(l LinkID) bool { return l == id })
	if len(out) == 0 {
		delete(s.linksOut, link.From)
	} else {
		s.linksOut[link.From] = out
	}
	return true
}

// RemoveNode deletes a node, its sockets and every link touching them.
// It returns false if the node does not exist.
func (s *Store) RemoveNode(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return false
	}

	for _, in := range node.Inputs {
		if linkID, ok := s.linkInto[in]; ok {
			s.removeLinkLocked(linkID)
		}
		delete(s.sockets, in)
	}
	for _, out := range node.Outputs {
		for _, linkID := range slices.Clone(s.linksOut[out]) {
			s.removeLinkLocked(linkID)
		}
		delete(s.sockets, out)
	}
	delete(s.nodes, id)
	return true
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id NodeID) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// HasNode reports whether the node exists.
func (s *Store) HasNode(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// Socket returns a copy of the socket with the given id.
func (s *Store) Socket(id SocketID) (Socket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sock, ok := s.sockets[id]
	if !ok {
		return Socket{}, false
	}
	return sock.clone(), true
}

// Link returns the link with the given id.
func (s *Store) Link(id LinkID) (Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[id]
	if !ok {
		return Link{}, false
	}
	return *l, true
}

// NodeIDs returns every node id in ascending order.
func (s *Store) NodeIDs() []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.nodes))
}

// LinkIDs returns every link id in ascending order.
func (s *Store) LinkIDs() []LinkID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.links))
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// LinkCount returns the number of links.
func (s *Store) LinkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}

// LinksInto lazily yields the links ending at socket (zero or one for inputs).
// The set is captured when iteration starts; the Store is not locked while
// the caller's loop body runs.
func (s *Store) LinksInto(socket SocketID) iter.Seq[Link] {
	return func(yield func(Link) bool) {
		s.mu.RLock()
		var captured []Link
		if id, ok := s.linkInto[socket]; ok {
			captured = append(captured, *s.links[id])
		}
		s.mu.RUnlock()

		for _, l := range captured {
			if !yield(l) {
				return
			}
		}
	}
}

// LinksOutOf lazily yields the links starting at socket in creation order.
func (s *Store) LinksOutOf(socket SocketID) iter.Seq[Link] {
	return func(yield func(Link) bool) {
		s.mu.RLock()
		ids := s.linksOut[socket]
		captured := make([]Link, 0, len(ids))
		for _, id := range ids {
			captured = append(captured, *s.links[id])
		}
		s.mu.RUnlock()

		for _, l := range captured {
			if !yield(l) {
				return
			}
		}
	}
}

// IncomingLink returns the link feeding an input socket, if any.
func (s *Store) IncomingLink(socket SocketID) (Link, bool) {
	for l := range s.LinksInto(socket) {
		return l, true
	}
	return Link{}, false
}

// Clone returns an independent snapshot of the store, including its id
// sequences, so edits to either side never affect the other.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := New()
	for id, n := range s.nodes {
		cp := n.clone()
		c.nodes[id] = &cp
	}
	for id, sock := range s.sockets {
		cp := sock.clone()
		c.sockets[id] = &cp
	}
	for id, l := range s.links {
		cp := *l
		c.links[id] = &cp
	}
	maps.Copy(c.linkInto, s.linkInto)
	for sock, ids := range s.linksOut {
		c.linksOut[sock] = slices.Clone(ids)
	}
	c.nodeSeq, c.socketSeq, c.linkSeq = s.nodeSeq, s.socketSeq, s.linkSeq
	return c
}

// SocketByName finds a node's socket by direction and name.
func (s *Store) SocketByName(node NodeID, dir Direction, name string) (SocketID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[node]
	if !ok {
		return 0, false
	}
	ids := n.Inputs
	if dir == Output {
		ids = n.Outputs
	}
	for _, id := range ids {
		if s.sockets[id].Name == name {
			return id, true
		}
	}
	return 0, false
}
