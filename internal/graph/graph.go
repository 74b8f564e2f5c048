package graph

import "fmt"

// Graph holds the authoritative node and edge sets of one diagram.
// Iteration order is insertion order so renders are deterministic.
// A Graph is not safe for concurrent use; the owning editor serializes access.
type Graph struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[string]int // id → position in nodes
	edgeIndex map[string]int // id → position in edges
}

// New allocates an empty Graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// AddNode inserts n. The id must not already be present.
func (g *Graph) AddNode(n Node) error {
	if _, ok := g.nodeIndex[n.ID]; ok {
		return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateID)
	}
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n.clone())
	return nil
}

// AddEdge inserts e. Both endpoints must be live nodes.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.edgeIndex[e.ID]; ok {
		return fmt.Errorf("edge %s: %w", e.ID, ErrDuplicateID)
	}
	if err := g.checkEndpoints(e); err != nil {
		return err
	}
	g.edgeIndex[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
	return nil
}

func (g *Graph) checkEndpoints(e Edge) error {
	if !g.HasNode(e.Source) {
		return &DanglingReferenceError{EdgeID: e.ID, Missing: e.Source, Role: "source"}
	}
	if !g.HasNode(e.Target) {
		return &DanglingReferenceError{EdgeID: e.ID, Missing: e.Target, Role: "target"}
	}
	return nil
}

// DeleteNode removes the node and every edge incident to it.
// It reports false if no such node exists.
func (g *Graph) DeleteNode(id string) bool {
	if !g.HasNode(id) {
		return false
	}
	g.BulkDelete([]string{id}, nil)
	return true
}

// DeleteEdge removes one edge. It reports false if no such edge exists.
func (g *Graph) DeleteEdge(id string) bool {
	if !g.HasEdge(id) {
		return false
	}
	g.BulkDelete(nil, []string{id})
	return true
}

// MoveNode sets the position of a node. It reports false if no such node exists.
func (g *Graph) MoveNode(id string, pos Position) bool {
	i, ok := g.nodeIndex[id]
	if !ok {
		return false
	}
	g.nodes[i].Position = pos
	return true
}

// BulkDelete removes the listed nodes and edges in one pass. Edges incident
// to a removed node go too, listed or not. Unknown ids are ignored.
func (g *Graph) BulkDelete(nodeIDs, edgeIDs []string) (removedNodes, removedEdges int) {
	dropNodes := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		if g.HasNode(id) {
			dropNodes[id] = struct{}{}
		}
	}
	dropEdges := make(map[string]struct{}, len(edgeIDs))
	for _, id := range edgeIDs {
		dropEdges[id] = struct{}{}
	}

	keptNodes := g.nodes[:0]
	for _, n := range g.nodes {
		if _, drop := dropNodes[n.ID]; drop {
			removedNodes++
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	keptEdges := g.edges[:0]
	for _, e := range g.edges {
		_, listed := dropEdges[e.ID]
		_, srcGone := dropNodes[e.Source]
		_, tgtGone := dropNodes[e.Target]
		if listed || srcGone || tgtGone {
			removedEdges++
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	clear(g.nodes[len(keptNodes):])
	clear(g.edges[len(keptEdges):])
	g.nodes = keptNodes
	g.edges = keptEdges
	g.reindex()
	return removedNodes, removedEdges
}

func (g *Graph) reindex() {
	clear(g.nodeIndex)
	for i, n := range g.nodes {
		g.nodeIndex[n.ID] = i
	}
	clear(g.edgeIndex)
	for i, e := range g.edges {
		g.edgeIndex[e.ID] = i
	}
}

// HasNode reports whether id is a live node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// HasEdge reports whether id is a live edge.
func (g *Graph) HasEdge(id string) bool {
	_, ok := g.edgeIndex[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i].clone(), true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// FindEdge returns the first edge from source to target, if any.
func (g *Graph) FindEdge(source, target string) (Edge, bool) {
	for _, e := range g.edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
