package graph

// Selection is the set of items currently selected in the render engine.
// The zero value is an empty selection.
type Selection struct {
	nodes map[string]struct{}
	edges map[string]struct{}
}

// NewSelection builds a selection from id lists.
func NewSelection(nodeIDs, edgeIDs []string) Selection {
	s := Selection{
		nodes: make(map[string]struct{}, len(nodeIDs)),
		edges: make(map[string]struct{}, len(edgeIDs)),
	}
	for _, id := range nodeIDs {
		s.nodes[id] = struct{}{}
	}
	for _, id := range edgeIDs {
		s.edges[id] = struct{}{}
	}
	return s
}

func (s Selection) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

func (s Selection) HasEdge(id string) bool {
	_, ok := s.edges[id]
	return ok
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.nodes) == 0 && len(s.edges) == 0
}

// Live splits the selection into ids that exist in g, in g's iteration order.
func (s Selection) Live(g *Graph) (nodeIDs, edgeIDs []string) {
	for _, n := range g.nodes {
		if s.HasNode(n.ID) {
			nodeIDs = append(nodeIDs, n.ID)
		}
	}
	for _, e := range g.edges {
		if s.HasEdge(e.ID) {
			edgeIDs = append(edgeIDs, e.ID)
		}
	}
	return nodeIDs, edgeIDs
}

// Prune returns the selection restricted to items still present in g.
func (s Selection) Prune(g *Graph) Selection {
	return NewSelection(s.Live(g))
}
