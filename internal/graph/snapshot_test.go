package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/productflow/internal/graph"
)

func TestSnapshot_RestoreIsExact(t *testing.T) {
	g := buildTestGraph(t)
	s := g.Snapshot()

	g.DeleteNode("a")
	g.MoveNode("b", graph.Position{X: -1, Y: -1})

	restored, err := graph.Restore(s)
	require.NoError(t, err)
	assert.Equal(t, s.Nodes(), restored.Nodes())
	assert.Equal(t, s.Edges(), restored.Edges())
	assert.Equal(t, []string{"a", "b", "c"}, nodeIDs(restored))
	assert.Equal(t, []string{"ab", "bc", "ca"}, edgeIDs(restored))
}

func TestSnapshot_IsIsolatedFromLiveGraph(t *testing.T) {
	g := buildTestGraph(t)
	s := g.Snapshot()

	g.MoveNode("a", graph.Position{X: 500, Y: 500})
	captured := s.Nodes()
	captured[0].Data.Images[0] = "changed"

	restored, err := graph.Restore(s)
	require.NoError(t, err)
	n, _ := restored.Node("a")
	assert.Equal(t, graph.Position{}, n.Position)
	assert.Equal(t, "https://img/a", n.Data.Images[0])
}

func TestRestore_RejectsDanglingEdge(t *testing.T) {
	s := graph.NewSnapshot(
		[]graph.Node{product("a", 0, 0)},
		[]graph.Edge{{ID: "ax", Source: "a", Target: "x"}},
	)
	_, err := graph.Restore(s)
	require.ErrorIs(t, err, graph.ErrDanglingReference)
}

func TestSnapshot_WithPosition(t *testing.T) {
	g := buildTestGraph(t)
	s := g.Snapshot().WithPosition("b", graph.Position{X: 7, Y: 8})

	restored, err := graph.Restore(s)
	require.NoError(t, err)
	n, _ := restored.Node("b")
	assert.Equal(t, graph.Position{X: 7, Y: 8}, n.Position)

	live, _ := g.Node("b")
	assert.Equal(t, graph.Position{X: 10, Y: 0}, live.Position)
}

func TestSnapshot_Empty(t *testing.T) {
	assert.True(t, graph.New().Snapshot().Empty())
	assert.False(t, buildTestGraph(t).Snapshot().Empty())
}
