package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/graph"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
)

type items map[int]catalog.Item

func (i items) Item(id int) (catalog.Item, bool) {
	it, ok := i[id]
	return it, ok
}

var testItems = items{1: {ID: 1, Title: "Essence Mascara", Price: 9.99}}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Items == nil {
		opts.Items = testItems
	}
	s := New(context.Background(), opts)
	t.Cleanup(s.Close)
	return s
}

func drop(x, y float64) *input.Event {
	return &input.Event{Type: input.TypeDrop, ItemID: 1, Position: &graph.Position{X: x, Y: y}}
}

func recv(t *testing.T, ch <-chan editor.State) editor.State {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("no state received")
	}
	return editor.State{}
}

// block occupies the worker until the returned func is called.
func block(t *testing.T, s *Session) func() {
	t.Helper()
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.submit(&work{apply: func(*editor.Editor) {
		close(started)
		<-release
	}}))
	<-started
	return func() { close(release) }
}

func TestDispatch(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	ev := drop(120, 80)
	res, err := s.Dispatch(ctx, ev)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.NotEmpty(t, ev.ID, "event id assigned")
	assert.Equal(t, ev.ID, res.EventID)
	assert.True(t, res.Outcome.Handled)
	require.Len(t, res.State.Scene.Nodes, 1)
	assert.Equal(t, "Essence Mascara", res.State.Scene.Nodes[0].Data.Name)
	assert.True(t, res.State.CanUndo)
	assert.False(t, res.State.CanRedo)

	res, err = s.Dispatch(ctx, &input.Event{Type: input.TypeUndo})
	require.NoError(t, err)
	assert.Empty(t, res.State.Scene.Nodes)
	assert.True(t, res.State.CanRedo)
}

func TestDispatch_EditorErrorsComeBackInResult(t *testing.T) {
	s := newTestSession(t, Options{})
	res, err := s.Dispatch(context.Background(), &input.Event{Type: "paste"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err(), input.ErrUnknownEvent)
	assert.NotEmpty(t, res.Error)

	res, err = s.Dispatch(context.Background(), &input.Event{Type: input.TypeConnect, Source: "x", Target: "y"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err(), graph.ErrDanglingReference)
}

func TestDispatch_QueueFullAndTimeout(t *testing.T) {
	s := newTestSession(t, Options{QueueDepth: 1, EventTimeout: 50 * time.Millisecond})
	release := block(t, s)
	defer release()

	// Fills the single slot, then times out waiting on the blocked worker.
	_, err := s.Dispatch(context.Background(), drop(0, 0))
	require.ErrorIs(t, err, ErrTimeout)

	_, err = s.Dispatch(context.Background(), drop(0, 0))
	require.ErrorIs(t, err, ErrQueueFull)
	assert.ErrorIs(t, s.DispatchAsync(drop(0, 0)), ErrQueueFull)
}

func TestDispatch_ContextCancelled(t *testing.T) {
	s := newTestSession(t, Options{})
	release := block(t, s)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Dispatch(ctx, drop(0, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubscribe(t *testing.T) {
	s := newTestSession(t, Options{})
	ch, cancel, err := s.Subscribe()
	require.NoError(t, err)
	defer cancel()

	st := recv(t, ch)
	assert.Empty(t, st.Scene.Nodes)

	require.NoError(t, s.DispatchAsync(drop(1, 2)))
	st = recv(t, ch)
	require.Len(t, st.Scene.Nodes, 1)

	// A theme toggle is a change; a rejected event is not.
	_, err = s.Dispatch(context.Background(), &input.Event{Type: input.TypeConnect, Source: "x", Target: "y"})
	require.NoError(t, err)
	_, err = s.Dispatch(context.Background(), &input.Event{Type: input.TypeToggleTheme})
	require.NoError(t, err)
	st = recv(t, ch)
	assert.True(t, st.Scene.DarkMode)
}

func TestSubscribe_SlowReaderSeesLatest(t *testing.T) {
	s := newTestSession(t, Options{})
	ch, cancel, err := s.Subscribe()
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 5; i++ {
		_, err := s.Dispatch(context.Background(), drop(float64(i), 0))
		require.NoError(t, err)
	}
	st := recv(t, ch)
	assert.Len(t, st.Scene.Nodes, 5)
}

func TestClose(t *testing.T) {
	s := New(context.Background(), Options{Items: testItems})
	ch, _, err := s.Subscribe()
	require.NoError(t, err)
	recv(t, ch)

	s.Close()
	s.Close()

	_, ok := <-ch
	assert.False(t, ok, "subscriber channel closed")
	_, err = s.Dispatch(context.Background(), drop(0, 0))
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, _, err = s.Subscribe()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestManager(t *testing.T) {
	m := NewManager(context.Background(), Settings{MaxSessions: 2, DarkMode: true}, testItems, nil)
	defer m.Shutdown()

	a, err := m.Create(CreateOptions{})
	require.NoError(t, err)
	light := false
	b, err := m.Create(CreateOptions{DarkMode: &light})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	_, err = m.Create(CreateOptions{})
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []string{a.ID(), b.ID()}, m.IDs())

	st, err := a.State(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Scene.DarkMode)
	st, err = b.State(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Scene.DarkMode)

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, m.Close(a.ID()))
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(a.ID()), ErrSessionNotFound)
	assert.Equal(t, 1, m.Count())
}

func TestManager_ApplyHistoryLimit(t *testing.T) {
	m := NewManager(context.Background(), Settings{}, testItems, nil)
	defer m.Shutdown()
	s, err := m.Create(CreateOptions{})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Dispatch(ctx, drop(0, 0))
		require.NoError(t, err)
	}
	m.Apply(Settings{HistoryLimit: 1})
	assert.Equal(t, 1, m.Settings().HistoryLimit)

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.UndoDepth)

	res, err := s.Dispatch(ctx, &input.Event{Type: input.TypeUndo})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Handled)
	assert.Len(t, res.State.Scene.Nodes, 2)

	res, err = s.Dispatch(ctx, &input.Event{Type: input.TypeUndo})
	require.NoError(t, err)
	assert.False(t, res.Outcome.Handled)
}
