package graph

// NodeKind discriminates the kinds of nodes that can be placed on the canvas.
type NodeKind string

const (
	NodeKindProduct NodeKind = "product"
)

// Position is a point in canvas space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ProductData is the payload shown on a product card.
type ProductData struct {
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Images []string `json:"images"`
}

// clone returns a copy that shares no backing array with d.
func (d ProductData) clone() ProductData {
	out := d
	if d.Images != nil {
		out.Images = make([]string, len(d.Images))
		copy(out.Images, d.Images)
	}
	return out
}

// Node is a placed item on the canvas.
// Theme and selection are not stored here; they are derived when the graph is rendered.
type Node struct {
	ID       string      `json:"id"`
	Kind     NodeKind    `json:"kind"`
	Position Position    `json:"position"`
	Data     ProductData `json:"data"`
}

func (n Node) clone() Node {
	n.Data = n.Data.clone()
	return n
}

// Edge is a directed link between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Touches reports whether the edge has nodeID as either endpoint.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
