// Package editor implements the mutation protocol of the diagram editor.
//
// An Editor owns one diagram's state: the graph, its undo/redo history,
// the global theme flag, the render engine's current selection and any
// node drags in flight. Every state-changing operation records the pre-image
// in history first, except selection changes, intermediate drag frames,
// theme changes and undo/redo themselves.
//
// An Editor is not safe for concurrent use. Callers serialize access; the
// session package does so with a single worker goroutine per editor.
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gyaneshwarpardhi/productflow/internal/graph"
	"github.com/gyaneshwarpardhi/productflow/internal/history"
)

// ErrSelfLoop is returned by Connect when self loops are disabled.
var ErrSelfLoop = errors.New("cannot connect node to itself")

// Op names an applied change, for listeners and metrics.
type Op string

const (
	OpAddNode    Op = "add_node"
	OpAddEdge    Op = "add_edge"
	OpDeleteNode Op = "delete_node"
	OpDeleteEdge Op = "delete_edge"
	OpMoveNode   Op = "move_node"
	OpDragFrame  Op = "drag_frame"
	OpBulkDelete Op = "bulk_delete"
	OpSelect     Op = "select"
	OpUndo       Op = "undo"
	OpRedo       Op = "redo"
	OpTheme      Op = "theme"
)

// Change describes one applied change. Recorded is true when a history
// entry was pushed for it.
type Change struct {
	Op       Op
	Recorded bool
}

// Options configures a new Editor.
type Options struct {
	DarkMode       bool
	AllowSelfLoops bool
	HistoryLimit   int // 0 = unbounded
	IDs            *IDSource
	Logger         *slog.Logger
}

// State is what the UI needs to draw one frame, including whether the
// Undo/Redo buttons should be enabled.
type State struct {
	Scene     graph.Scene `json:"scene"`
	CanUndo   bool        `json:"can_undo"`
	CanRedo   bool        `json:"can_redo"`
	UndoDepth int         `json:"undo_depth"`
	RedoDepth int         `json:"redo_depth"`
}

// Editor is the single owner of a diagram's editing state.
type Editor struct {
	graph          *graph.Graph
	history        *history.Store
	dark           bool
	selection      graph.Selection
	drags          map[string]graph.Position // node id → position before the drag started
	allowSelfLoops bool
	ids            *IDSource
	onChange       []func(Change)
	log            *slog.Logger
}

// New creates an empty editor.
func New(opts Options) *Editor {
	ids := opts.IDs
	if ids == nil {
		ids = NewIDSource(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		graph:          graph.New(),
		history:        history.New(opts.HistoryLimit),
		dark:           opts.DarkMode,
		drags:          make(map[string]graph.Position),
		allowSelfLoops: opts.AllowSelfLoops,
		ids:            ids,
		log:            logger,
	}
}

// OnChange registers a callback invoked after every applied change.
func (e *Editor) OnChange(fn func(Change)) {
	e.onChange = append(e.onChange, fn)
}

func (e *Editor) emit(op Op, recorded bool) {
	c := Change{Op: op, Recorded: recorded}
	for _, fn := range e.onChange {
		fn(c)
	}
}

// preImage is the structure history should see right now: the live graph
// with every in-flight drag rolled back to where it started.
func (e *Editor) preImage() graph.Snapshot {
	s := e.graph.Snapshot()
	for id, origin := range e.drags {
		s = s.WithPosition(id, origin)
	}
	return s
}

func (e *Editor) record() {
	e.history.Snapshot(e.preImage())
}

// -----------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------

// DropProduct places a new product node at pos.
func (e *Editor) DropProduct(data graph.ProductData, pos graph.Position) (graph.Node, error) {
	n := graph.Node{
		ID:       e.ids.Next("product"),
		Kind:     graph.NodeKindProduct,
		Position: pos,
		Data:     data,
	}
	if e.graph.HasNode(n.ID) {
		return graph.Node{}, fmt.Errorf("drop: node %s: %w", n.ID, graph.ErrDuplicateID)
	}
	e.record()
	if err := e.graph.AddNode(n); err != nil {
		return graph.Node{}, fmt.Errorf("drop: %w", err)
	}
	e.log.Debug("node added", "node", n.ID, "name", data.Name, "x", pos.X, "y", pos.Y)
	e.emit(OpAddNode, true)
	return n, nil
}

// Connect links source to target. A connection that already exists is
// left alone and reported with created == false.
func (e *Editor) Connect(source, target string) (edge graph.Edge, created bool, err error) {
	edge = graph.Edge{ID: e.ids.Next("edge"), Source: source, Target: target}
	if !e.graph.HasNode(source) {
		return graph.Edge{}, false, &graph.DanglingReferenceError{EdgeID: edge.ID, Missing: source, Role: "source"}
	}
	if !e.graph.HasNode(target) {
		return graph.Edge{}, false, &graph.DanglingReferenceError{EdgeID: edge.ID, Missing: target, Role: "target"}
	}
	if source == target && !e.allowSelfLoops {
		return graph.Edge{}, false, fmt.Errorf("connect %s: %w", source, ErrSelfLoop)
	}
	if existing, ok := e.graph.FindEdge(source, target); ok {
		return existing, false, nil
	}
	e.record()
	if err := e.graph.AddEdge(edge); err != nil {
		return graph.Edge{}, false, fmt.Errorf("connect: %w", err)
	}
	e.log.Debug("edge added", "edge", edge.ID, "source", source, "target", target)
	e.emit(OpAddEdge, true)
	return edge, true, nil
}

// DeleteNode removes a node and its incident edges. Unknown ids are a no-op.
func (e *Editor) DeleteNode(id string) bool {
	if !e.graph.HasNode(id) {
		return false
	}
	e.record()
	e.graph.DeleteNode(id)
	delete(e.drags, id)
	e.selection = e.selection.Prune(e.graph)
	e.log.Debug("node deleted", "node", id)
	e.emit(OpDeleteNode, true)
	return true
}

// DeleteEdge removes one edge. Unknown ids are a no-op.
func (e *Editor) DeleteEdge(id string) bool {
	if !e.graph.HasEdge(id) {
		return false
	}
	e.record()
	e.graph.DeleteEdge(id)
	e.selection = e.selection.Prune(e.graph)
	e.log.Debug("edge deleted", "edge", id)
	e.emit(OpDeleteEdge, true)
	return true
}

// DragNode applies one position update from the render engine. While
// dragging is true the position is applied live and the pre-drag position
// is remembered. The final update (dragging false) records history with the
// node at its pre-drag position, then commits the resting position.
func (e *Editor) DragNode(id string, pos graph.Position, dragging bool) bool {
	n, ok := e.graph.Node(id)
	if !ok {
		return false
	}
	if dragging {
		if _, started := e.drags[id]; !started {
			e.drags[id] = n.Position
		}
		e.graph.MoveNode(id, pos)
		e.emit(OpDragFrame, false)
		return true
	}

	origin, started := e.drags[id]
	if !started {
		origin = n.Position
	}
	if origin == pos {
		delete(e.drags, id)
		if n.Position != pos {
			e.graph.MoveNode(id, pos)
			e.emit(OpDragFrame, false)
		}
		return false
	}
	e.record()
	delete(e.drags, id)
	e.graph.MoveNode(id, pos)
	e.log.Debug("node moved", "node", id, "x", pos.X, "y", pos.Y)
	e.emit(OpMoveNode, true)
	return true
}

// Select replaces the current selection. Unknown ids are dropped.
func (e *Editor) Select(nodeIDs, edgeIDs []string) {
	e.selection = graph.NewSelection(nodeIDs, edgeIDs).Prune(e.graph)
	e.emit(OpSelect, false)
}

// HasSelection reports whether any live node or edge is selected.
func (e *Editor) HasSelection() bool {
	nodes, edges := e.selection.Live(e.graph)
	return len(nodes) > 0 || len(edges) > 0
}

// DeleteSelection removes every selected node and edge, plus edges incident
// to selected nodes, under a single history entry.
func (e *Editor) DeleteSelection() (removedNodes, removedEdges int) {
	nodeIDs, edgeIDs := e.selection.Live(e.graph)
	if len(nodeIDs) == 0 && len(edgeIDs) == 0 {
		return 0, 0
	}
	e.record()
	removedNodes, removedEdges = e.graph.BulkDelete(nodeIDs, edgeIDs)
	for _, id := range nodeIDs {
		delete(e.drags, id)
	}
	e.selection = graph.Selection{}
	e.log.Debug("selection deleted", "nodes", removedNodes, "edges", removedEdges)
	e.emit(OpBulkDelete, true)
	return removedNodes, removedEdges
}

// -----------------------------------------------------------------------
// History
// -----------------------------------------------------------------------

// Undo restores the previous structure. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() (bool, error) {
	return e.travel(OpUndo, e.history.Undo, e.history.Redo)
}

// Redo re-applies the most recently undone structure. It reports false when
// there is nothing to redo.
func (e *Editor) Redo() (bool, error) {
	return e.travel(OpRedo, e.history.Redo, e.history.Undo)
}

func (e *Editor) travel(op Op, step, back func(graph.Snapshot) (graph.Snapshot, bool)) (bool, error) {
	current := e.preImage()
	target, ok := step(current)
	if !ok {
		return false, nil
	}
	g, err := graph.Restore(target)
	if err != nil {
		// Put both stacks back the way they were.
		back(target)
		return false, fmt.Errorf("%s: restore snapshot: %w", op, err)
	}
	e.graph = g
	clear(e.drags)
	e.selection = graph.Selection{}
	e.log.Debug("history step", "op", op, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	e.emit(op, false)
	return true, nil
}

// SetHistoryLimit changes the maximum undo depth (0 = unbounded).
func (e *Editor) SetHistoryLimit(limit int) {
	e.history.SetLimit(limit)
}

// -----------------------------------------------------------------------
// Theme
// -----------------------------------------------------------------------

// SetTheme changes the global theme flag. It never touches history.
func (e *Editor) SetTheme(dark bool) {
	if e.dark == dark {
		return
	}
	e.dark = dark
	e.emit(OpTheme, false)
}

// ToggleTheme flips the theme flag and returns the new value.
func (e *Editor) ToggleTheme() bool {
	e.SetTheme(!e.dark)
	return e.dark
}

// DarkMode returns the global theme flag.
func (e *Editor) DarkMode() bool { return e.dark }

// -----------------------------------------------------------------------
// Read side
// -----------------------------------------------------------------------

// Scene renders the live graph with bindings derived from the current theme
// and selection.
func (e *Editor) Scene() graph.Scene {
	return e.graph.Render(e.dark, e.selection)
}

// State returns the scene plus history availability.
func (e *Editor) State() State {
	undo, redo := e.history.Depths()
	return State{
		Scene:     e.Scene(),
		CanUndo:   undo > 0,
		CanRedo:   redo > 0,
		UndoDepth: undo,
		RedoDepth: redo,
	}
}

// Snapshot returns the live structure, in-flight drags included.
func (e *Editor) Snapshot() graph.Snapshot {
	return e.graph.Snapshot()
}

// CanUndo reports whether Undo would do anything.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }
