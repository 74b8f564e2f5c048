// Package surface translates raw input events into editor operations.
package surface

import (
	"log/slog"

	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
)

// ItemLookup resolves catalog item ids for drops that carry no payload.
type ItemLookup interface {
	Item(id int) (catalog.Item, bool)
}

// Surface dispatches input events to one editor.
type Surface struct {
	ed    *editor.Editor
	items ItemLookup
	reg   *Registry
	log   *slog.Logger
}

// New wires every input type to its editor operation. items may be nil, in
// which case drops must carry their item.
func New(ed *editor.Editor, items ItemLookup, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Surface{ed: ed, items: items, reg: NewRegistry(), log: logger}

	s.reg.Register(input.TypeDrop, s.handleDrop)
	s.reg.Register(input.TypeConnect, s.handleConnect)
	s.reg.Register(input.TypeDeleteNode, func(ev *input.Event) (Outcome, error) {
		return Outcome{Handled: s.ed.DeleteNode(ev.NodeID)}, nil
	})
	s.reg.Register(input.TypeDeleteEdge, func(ev *input.Event) (Outcome, error) {
		return Outcome{Handled: s.ed.DeleteEdge(ev.EdgeID)}, nil
	})
	s.reg.Register(input.TypeNodeDrag, func(ev *input.Event) (Outcome, error) {
		return Outcome{Handled: s.ed.DragNode(ev.NodeID, *ev.Position, ev.Dragging)}, nil
	})
	s.reg.Register(input.TypeSelect, func(ev *input.Event) (Outcome, error) {
		s.ed.Select(ev.NodeIDs, ev.EdgeIDs)
		return Outcome{Handled: true}, nil
	})
	s.reg.Register(input.TypeKey, s.handleKey)
	s.reg.Register(input.TypeUndo, func(*input.Event) (Outcome, error) {
		ok, err := s.ed.Undo()
		return Outcome{Handled: ok}, err
	})
	s.reg.Register(input.TypeRedo, func(*input.Event) (Outcome, error) {
		ok, err := s.ed.Redo()
		return Outcome{Handled: ok}, err
	})
	s.reg.Register(input.TypeToggleTheme, func(*input.Event) (Outcome, error) {
		s.ed.ToggleTheme()
		return Outcome{Handled: true}, nil
	})
	s.reg.Register(input.TypeSetTheme, func(ev *input.Event) (Outcome, error) {
		s.ed.SetTheme(*ev.Dark)
		return Outcome{Handled: true}, nil
	})
	return s
}

// Dispatch validates ev and runs its handler.
func (s *Surface) Dispatch(ev *input.Event) (Outcome, error) {
	if err := ev.Validate(); err != nil {
		return Outcome{}, err
	}
	fn, err := s.reg.Get(ev.Type)
	if err != nil {
		return Outcome{}, err
	}
	return fn(ev)
}

// Editor returns the editor this surface drives.
func (s *Surface) Editor() *editor.Editor { return s.ed }

// Types lists the event types the surface understands.
func (s *Surface) Types() []input.Type { return s.reg.Types() }

func (s *Surface) handleDrop(ev *input.Event) (Outcome, error) {
	var item catalog.Item
	switch {
	case ev.Item != nil:
		item = *ev.Item
	case ev.ItemID != 0 && s.items != nil:
		found, ok := s.items.Item(ev.ItemID)
		if !ok {
			s.log.Warn("drop ignored: unknown catalog item", "item_id", ev.ItemID)
			return Outcome{}, nil
		}
		item = found
	default:
		// Nothing usable in the transfer payload.
		return Outcome{}, nil
	}
	n, err := s.ed.DropProduct(item.ProductData(), ev.CanvasPosition())
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Handled: true, NodeID: n.ID}, nil
}

func (s *Surface) handleConnect(ev *input.Event) (Outcome, error) {
	e, created, err := s.ed.Connect(ev.Source, ev.Target)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Handled: created}
	if created {
		out.EdgeID = e.ID
	}
	return out, nil
}
