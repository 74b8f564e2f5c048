package graph

const (
	// nodeViewType and edgeViewType name the renderer components used for each item.
	nodeViewType = "productNode"
	edgeViewType = "custom"
)

// Command is a deferred editor call bound to one rendered item.
// It stores only the item id; the editor resolves it when the command comes back.
type Command struct {
	Type   string `json:"type"`
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
}

// NodeView is a node as handed to the render engine.
type NodeView struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Position Position     `json:"position"`
	Selected bool         `json:"selected"`
	Data     NodeViewData `json:"data"`
}

// NodeViewData is the per-node payload plus derived presentation bindings.
type NodeViewData struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	DarkMode bool     `json:"dark_mode"`
	OnDelete Command  `json:"on_delete"`
}

// EdgeView is an edge as handed to the render engine.
type EdgeView struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Animated bool         `json:"animated"`
	Selected bool         `json:"selected"`
	Data     EdgeViewData `json:"data"`
}

// EdgeViewData holds the derived bindings of an edge's midpoint control.
type EdgeViewData struct {
	DarkMode bool    `json:"dark_mode"`
	OnDelete Command `json:"on_delete"`
}

// Scene is the full render input for one frame.
type Scene struct {
	Nodes    []NodeView `json:"nodes"`
	Edges    []EdgeView `json:"edges"`
	DarkMode bool       `json:"dark_mode"`
}

// Render derives the scene from the live graph. The theme flag and delete
// bindings of every item come from the arguments, never from stored state,
// so changing the theme is just another call to Render.
func (g *Graph) Render(dark bool, sel Selection) Scene {
	sc := Scene{
		Nodes:    make([]NodeView, 0, len(g.nodes)),
		Edges:    make([]EdgeView, 0, len(g.edges)),
		DarkMode: dark,
	}
	for _, n := range g.nodes {
		d := n.Data.clone()
		sc.Nodes = append(sc.Nodes, NodeView{
			ID:       n.ID,
			Type:     nodeViewType,
			Position: n.Position,
			Selected: sel.HasNode(n.ID),
			Data: NodeViewData{
				Name:     d.Name,
				Price:    d.Price,
				Images:   d.Images,
				DarkMode: dark,
				OnDelete: Command{Type: "delete_node", NodeID: n.ID},
			},
		})
	}
	for _, e := range g.edges {
		sc.Edges = append(sc.Edges, EdgeView{
			ID:       e.ID,
			Type:     edgeViewType,
			Source:   e.Source,
			Target:   e.Target,
			Animated: true,
			Selected: sel.HasEdge(e.ID),
			Data: EdgeViewData{
				DarkMode: dark,
				OnDelete: Command{Type: "delete_edge", EdgeID: e.ID},
			},
		})
	}
	return sc
}
