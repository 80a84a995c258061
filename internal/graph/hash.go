package graph

import (
	"slices"

	"github.com/roach88/shadegraph/internal/ir"
)

// Hash computes a content-addressed identity over everything compilation
// depends on: node kinds, sockets (names, types, input configs) and links.
// Positions are display metadata and do not contribute.
func (s *Store) Hash() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodeIDs := make([]NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	slices.Sort(nodeIDs)

	nodes := make([]any, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n := s.nodes[id]
		nodes = append(nodes, map[string]any{
			"id":      int64(n.ID),
			"kind":    kindCanonical(n.Kind),
			"inputs":  s.socketsCanonical(n.Inputs),
			"outputs": s.socketsCanonical(n.Outputs),
		})
	}

	linkIDs := make([]LinkID, 0, len(s.links))
	for id := range s.links {
		linkIDs = append(linkIDs, id)
	}
	slices.Sort(linkIDs)

	links := make([]any, 0, len(linkIDs))
	for _, id := range linkIDs {
		l := s.links[id]
		links = append(links, map[string]any{
			"from": int64(l.From),
			"to":   int64(l.To),
		})
	}

	return ir.HashCanonical(ir.DomainGraph, map[string]any{
		"nodes": nodes,
		"links": links,
	})
}

func (s *Store) socketsCanonical(ids []SocketID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		sock := s.sockets[id]
		entry := map[string]any{
			"id":   int64(sock.ID),
			"name": sock.Name,
			"type": sock.Type.String(),
		}
		if sock.Direction == Input {
			entry["optional"] = sock.IsOptional()
			if def, ok := sock.Default(); ok {
				entry["default"] = def.CanonicalValue()
			}
		}
		out = append(out, entry)
	}
	return out
}
