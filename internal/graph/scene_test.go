package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/productflow/internal/graph"
)

func TestRender_DerivesThemeAndBindings(t *testing.T) {
	g := buildTestGraph(t)

	for _, dark := range []bool{false, true} {
		sc := g.Render(dark, graph.Selection{})
		assert.Equal(t, dark, sc.DarkMode)
		require.Len(t, sc.Nodes, 3)
		require.Len(t, sc.Edges, 3)
		for _, n := range sc.Nodes {
			assert.Equal(t, dark, n.Data.DarkMode)
			assert.Equal(t, "productNode", n.Type)
			assert.Equal(t, graph.Command{Type: "delete_node", NodeID: n.ID}, n.Data.OnDelete)
		}
		for _, e := range sc.Edges {
			assert.Equal(t, dark, e.Data.DarkMode)
			assert.Equal(t, "custom", e.Type)
			assert.True(t, e.Animated)
			assert.Equal(t, graph.Command{Type: "delete_edge", EdgeID: e.ID}, e.Data.OnDelete)
		}
	}
}

func TestRender_MarksSelection(t *testing.T) {
	g := buildTestGraph(t)
	sc := g.Render(false, graph.NewSelection([]string{"b"}, []string{"ca"}))

	for _, n := range sc.Nodes {
		assert.Equal(t, n.ID == "b", n.Selected, n.ID)
	}
	for _, e := range sc.Edges {
		assert.Equal(t, e.ID == "ca", e.Selected, e.ID)
	}
}

func TestSelection_Prune(t *testing.T) {
	g := buildTestGraph(t)
	sel := graph.NewSelection([]string{"c", "gone", "a"}, []string{"bc", "old"})

	nodes, edges := sel.Live(g)
	assert.Equal(t, []string{"a", "c"}, nodes)
	assert.Equal(t, []string{"bc"}, edges)

	g.DeleteNode("c")
	pruned := sel.Prune(g)
	assert.True(t, pruned.HasNode("a"))
	assert.False(t, pruned.HasNode("c"))
	assert.False(t, pruned.HasEdge("bc"))
	assert.True(t, graph.Selection{}.Empty())
}

func TestViewport_Project(t *testing.T) {
	cases := []struct {
		name string
		vp   graph.Viewport
		in   graph.Point
		want graph.Position
	}{
		{"identity", graph.Viewport{Zoom: 1}, graph.Point{X: 120, Y: 80}, graph.Position{X: 120, Y: 80}},
		{"zero zoom treated as 1", graph.Viewport{}, graph.Point{X: 3, Y: 4}, graph.Position{X: 3, Y: 4}},
		{"panned", graph.Viewport{X: 20, Y: -10, Zoom: 1}, graph.Point{X: 120, Y: 80}, graph.Position{X: 100, Y: 90}},
		{"zoomed", graph.Viewport{X: 0, Y: 0, Zoom: 2}, graph.Point{X: 120, Y: 80}, graph.Position{X: 60, Y: 40}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.vp.Project(tc.in))
		})
	}
}
