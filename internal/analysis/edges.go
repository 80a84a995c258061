package analysis

import "github.com/roach88/shadegraph/internal/graph"

// successors returns the downstream node of every outgoing link of id.
// Order is output socket order, then link creation order. A node fed twice
// by the same upstream node appears twice.
func successors(g *graph.Store, id graph.NodeID) []graph.NodeID {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var out []graph.NodeID
	for _, sock := range n.Outputs {
		for link := range g.LinksOutOf(sock) {
			if dst, ok := g.Socket(link.To); ok {
				out = append(out, dst.Node)
			}
		}
	}
	return out
}

// predecessors returns the upstream node feeding each connected input of id,
// in input socket order.
func predecessors(g *graph.Store, id graph.NodeID) []graph.NodeID {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var out []graph.NodeID
	for _, sock := range n.Inputs {
		link, ok := g.IncomingLink(sock)
		if !ok {
			continue
		}
		if src, ok := g.Socket(link.From); ok {
			out = append(out, src.Node)
		}
	}
	return out
}
