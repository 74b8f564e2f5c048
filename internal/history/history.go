// Package history keeps the undo and redo stacks of graph snapshots.
//
// The timeline is linear: recording a new snapshot discards everything on
// the redo stack. Depth is unbounded unless a positive limit is set, in
// which case the oldest undo entries are evicted first.
package history

import (
	"github.com/gyaneshwarpardhi/productflow/internal/graph"
)

// Store holds the two snapshot stacks of one editor.
// It is not safe for concurrent use.
type Store struct {
	undo  []graph.Snapshot
	redo  []graph.Snapshot
	limit int // 0 = unbounded
}

// New creates a Store. limit <= 0 means unbounded.
func New(limit int) *Store {
	s := &Store{}
	s.SetLimit(limit)
	return s
}

// SetLimit changes the maximum undo depth and evicts immediately if needed.
func (s *Store) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	s.limit = limit
	s.undo = s.evict(s.undo)
	s.redo = s.evict(s.redo)
}

// Limit returns the configured maximum depth (0 = unbounded).
func (s *Store) Limit() int { return s.limit }

// Snapshot records the pre-image of a mutation and clears the redo stack.
func (s *Store) Snapshot(current graph.Snapshot) {
	s.undo = s.evict(append(s.undo, current))
	clear(s.redo)
	s.redo = s.redo[:0]
}

// Undo pops the most recent snapshot and parks current on the redo stack.
// It reports false, changing nothing, when there is nothing to undo.
func (s *Store) Undo(current graph.Snapshot) (graph.Snapshot, bool) {
	prev, ok := pop(&s.undo)
	if !ok {
		return graph.Snapshot{}, false
	}
	s.redo = s.evict(append(s.redo, current))
	return prev, true
}

// Redo is the mirror of Undo.
func (s *Store) Redo(current graph.Snapshot) (graph.Snapshot, bool) {
	next, ok := pop(&s.redo)
	if !ok {
		return graph.Snapshot{}, false
	}
	s.undo = s.evict(append(s.undo, current))
	return next, true
}

// Clear drops both stacks.
func (s *Store) Clear() {
	s.undo = nil
	s.redo = nil
}

func (s *Store) CanUndo() bool { return len(s.undo) > 0 }
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// Depths returns the current sizes of the undo and redo stacks.
func (s *Store) Depths() (undo, redo int) {
	return len(s.undo), len(s.redo)
}

func (s *Store) evict(stack []graph.Snapshot) []graph.Snapshot {
	if s.limit == 0 || len(stack) <= s.limit {
		return stack
	}
	excess := len(stack) - s.limit
	kept := make([]graph.Snapshot, s.limit)
	copy(kept, stack[excess:])
	return kept
}

func pop(stack *[]graph.Snapshot) (graph.Snapshot, bool) {
	st := *stack
	if len(st) == 0 {
		return graph.Snapshot{}, false
	}
	top := st[len(st)-1]
	st[len(st)-1] = graph.Snapshot{}
	*stack = st[:len(st)-1]
	return top, true
}
