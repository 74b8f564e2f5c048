package graph

// Snapshot is an immutable structural copy of a graph: ids, kinds,
// positions, payloads and connections. It carries no theme or selection.
type Snapshot struct {
	nodes []Node
	edges []Edge
}

// Snapshot captures the current structure of g.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{nodes: g.Nodes(), edges: g.Edges()}
}

// WithPosition returns a copy of s with one node moved. Nodes not present are ignored.
func (s Snapshot) WithPosition(id string, pos Position) Snapshot {
	out := Snapshot{nodes: s.Nodes(), edges: s.edges}
	for i := range out.nodes {
		if out.nodes[i].ID == id {
			out.nodes[i].Position = pos
		}
	}
	return out
}

// Nodes returns copies of the captured nodes.
func (s Snapshot) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns copies of the captured edges.
func (s Snapshot) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Empty reports whether the snapshot holds no nodes and no edges.
func (s Snapshot) Empty() bool {
	return len(s.nodes) == 0 && len(s.edges) == 0
}

// Restore builds a fresh Graph from s. Every edge is re-validated, so a
// snapshot referencing a missing node fails with *DanglingReferenceError.
func Restore(s Snapshot) (*Graph, error) {
	g := New()
	for _, n := range s.nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range s.edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NewSnapshot assembles a snapshot from explicit node and edge lists.
// The input slices are copied.
func NewSnapshot(nodes []Node, edges []Edge) Snapshot {
	s := Snapshot{nodes: make([]Node, len(nodes)), edges: make([]Edge, len(edges))}
	for i, n := range nodes {
		s.nodes[i] = n.clone()
	}
	copy(s.edges, edges)
	return s
}
