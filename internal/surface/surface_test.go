package surface_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/graph"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
	"github.com/gyaneshwarpardhi/productflow/internal/surface"
)

type fakeCatalog map[int]catalog.Item

func (f fakeCatalog) Item(id int) (catalog.Item, bool) {
	it, ok := f[id]
	return it, ok
}

var mascara = catalog.Item{
	ID:     1,
	Title:  "Essence Mascara",
	Price:  9.99,
	Images: []string{"https://cdn.dummyjson.com/products/images/beauty/1.png"},
}

func newSurface(t *testing.T) (*surface.Surface, *editor.Editor) {
	t.Helper()
	ed := editor.New(editor.Options{
		AllowSelfLoops: true,
		IDs:            editor.NewIDSource(func() time.Time { return time.UnixMilli(42) }),
	})
	return surface.New(ed, fakeCatalog{1: mascara}, nil), ed
}

func dispatch(t *testing.T, s *surface.Surface, ev input.Event) surface.Outcome {
	t.Helper()
	out, err := s.Dispatch(&ev)
	require.NoError(t, err)
	return out
}

func key(k string, ctrl, meta bool) input.Event {
	return input.Event{Type: input.TypeKey, Key: &input.KeyStroke{Key: k, Ctrl: ctrl, Meta: meta}}
}

func TestDrop_ItemPayload(t *testing.T) {
	s, ed := newSurface(t)
	item := mascara
	out := dispatch(t, s, input.Event{
		Type:     input.TypeDrop,
		Item:     &item,
		Screen:   &graph.Point{X: 120, Y: 80},
		Viewport: graph.Viewport{Zoom: 1},
	})
	require.True(t, out.Handled)

	nodes := ed.Snapshot().Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, out.NodeID, nodes[0].ID)
	assert.Equal(t, "Essence Mascara", nodes[0].Data.Name)
	assert.Equal(t, 9.99, nodes[0].Data.Price)
	assert.Equal(t, graph.Position{X: 120, Y: 80}, nodes[0].Position)
	assert.Empty(t, ed.Snapshot().Edges())
}

func TestDrop_ItemIDResolvedThroughCatalog(t *testing.T) {
	s, ed := newSurface(t)
	out := dispatch(t, s, input.Event{Type: input.TypeDrop, ItemID: 1, Position: &graph.Position{X: 5, Y: 6}})
	require.True(t, out.Handled)
	assert.Equal(t, "Essence Mascara", ed.Snapshot().Nodes()[0].Data.Name)
}

func TestDrop_WithoutPayloadIsIgnored(t *testing.T) {
	s, ed := newSurface(t)
	out := dispatch(t, s, input.Event{Type: input.TypeDrop, ItemID: 404, Position: &graph.Position{}})
	assert.False(t, out.Handled)
	out = dispatch(t, s, input.Event{Type: input.TypeDrop, Position: &graph.Position{}})
	assert.False(t, out.Handled)
	assert.True(t, ed.Snapshot().Empty())
	assert.False(t, ed.CanUndo())
}

func TestConnectAndDeleteControls(t *testing.T) {
	s, ed := newSurface(t)
	a := dispatch(t, s, input.Event{Type: input.TypeDrop, ItemID: 1, Position: &graph.Position{}}).NodeID
	b := dispatch(t, s, input.Event{Type: input.TypeDrop, ItemID: 1, Position: &graph.Position{Y: 100}}).NodeID

	out := dispatch(t, s, input.Event{Type: input.TypeConnect, Source: a, Target: b})
	require.True(t, out.Handled)
	require.NotEmpty(t, out.EdgeID)

	// The delete binding in the scene is itself a valid event.
	sc := ed.Scene()
	cmd := sc.Edges[0].Data.OnDelete
	out = dispatch(t, s, input.Event{Type: input.Type(cmd.Type), EdgeID: cmd.EdgeID})
	assert.True(t, out.Handled)
	assert.Empty(t, ed.Snapshot().Edges())

	cmd = ed.Scene().Nodes[0].Data.OnDelete
	out = dispatch(t, s, input.Event{Type: input.Type(cmd.Type), NodeID: cmd.NodeID})
	assert.True(t, out.Handled)
	assert.Len(t, ed.Snapshot().Nodes(), 1)

	_, err := s.Dispatch(&input.Event{Type: input.TypeConnect, Source: a, Target: b})
	require.ErrorIs(t, err, graph.ErrDanglingReference)
}

func TestKeyboard(t *testing.T) {
	s, ed := newSurface(t)
	a := dispatch(t, s, input.Event{Type: input.TypeDrop, ItemID: 1, Position: &graph.Position{}}).NodeID
	b := dispatch(t, s, input.Event{Type: input.TypeDrop, ItemID: 1, Position: &graph.Position{}}).NodeID
	dispatch(t, s, input.Event{Type: input.TypeConnect, Source: a, Target: b})

	// Delete without a selection does nothing.
	out := dispatch(t, s, key("Delete", false, false))
	assert.False(t, out.Handled)
	assert.Len(t, ed.Snapshot().Nodes(), 2)

	dispatch(t, s, input.Event{Type: input.TypeSelect, NodeIDs: []string{a}})
	out = dispatch(t, s, key("Backspace", false, false))
	assert.True(t, out.Handled)
	assert.False(t, out.PreventDefault)
	assert.Len(t, ed.Snapshot().Nodes(), 1)
	assert.Empty(t, ed.Snapshot().Edges())

	out = dispatch(t, s, key("z", true, false))
	assert.True(t, out.Handled)
	assert.True(t, out.PreventDefault)
	assert.Len(t, ed.Snapshot().Edges(), 1)

	out = dispatch(t, s, key("y", false, true))
	assert.True(t, out.Handled)
	assert.True(t, out.PreventDefault)
	assert.Empty(t, ed.Snapshot().Edges())

	// Plain z is just typing.
	out = dispatch(t, s, key("z", false, false))
	assert.False(t, out.Handled)
	assert.False(t, out.PreventDefault)

	// Redo with an empty stack still suppresses the browser default.
	out = dispatch(t, s, key("y", true, false))
	assert.False(t, out.Handled)
	assert.True(t, out.PreventDefault)
}

func TestTheme(t *testing.T) {
	s, ed := newSurface(t)
	dispatch(t, s, input.Event{Type: input.TypeToggleTheme})
	assert.True(t, ed.DarkMode())
	dark := false
	dispatch(t, s, input.Event{Type: input.TypeSetTheme, Dark: &dark})
	assert.False(t, ed.DarkMode())
	assert.False(t, ed.CanUndo())
}

func TestDispatch_RejectsBadEvents(t *testing.T) {
	s, _ := newSurface(t)
	cases := []struct {
		name string
		ev   input.Event
		want error
	}{
		{"unknown type", input.Event{Type: "paste"}, input.ErrUnknownEvent},
		{"connect without target", input.Event{Type: input.TypeConnect, Source: "a"}, input.ErrInvalidEvent},
		{"drag without position", input.Event{Type: input.TypeNodeDrag, NodeID: "a"}, input.ErrInvalidEvent},
		{"key without key", input.Event{Type: input.TypeKey}, input.ErrInvalidEvent},
		{"set_theme without flag", input.Event{Type: input.TypeSetTheme}, input.ErrInvalidEvent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Dispatch(&tc.ev)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTypes_CoversEveryEvent(t *testing.T) {
	s, _ := newSurface(t)
	assert.ElementsMatch(t, []input.Type{
		input.TypeDrop, input.TypeConnect, input.TypeDeleteNode, input.TypeDeleteEdge,
		input.TypeNodeDrag, input.TypeSelect, input.TypeKey, input.TypeUndo,
		input.TypeRedo, input.TypeToggleTheme, input.TypeSetTheme,
	}, s.Types())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := surface.NewRegistry()
	noop := func(*input.Event) (surface.Outcome, error) { return surface.Outcome{}, nil }
	r.Register(input.TypeUndo, noop)
	assert.Panics(t, func() { r.Register(input.TypeUndo, noop) })
}
