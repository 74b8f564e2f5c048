package surface

import "github.com/gyaneshwarpardhi/productflow/internal/input"

// handleKey implements the editor's keyboard shortcuts:
//
//	Delete / Backspace   delete the current selection (if any)
//	Ctrl/Cmd + z         undo
//	Ctrl/Cmd + y         redo
//
// Selection is read from the editor when the key arrives, so the binding
// never goes stale as nodes and edges change.
func (s *Surface) handleKey(ev *input.Event) (Outcome, error) {
	k := ev.Key
	switch {
	case k.Key == "Delete" || k.Key == "Backspace":
		if !s.ed.HasSelection() {
			return Outcome{}, nil
		}
		s.ed.DeleteSelection()
		return Outcome{Handled: true}, nil
	case (k.Ctrl || k.Meta) && k.Key == "z":
		ok, err := s.ed.Undo()
		return Outcome{Handled: ok, PreventDefault: true}, err
	case (k.Ctrl || k.Meta) && k.Key == "y":
		ok, err := s.ed.Redo()
		return Outcome{Handled: ok, PreventDefault: true}, err
	}
	return Outcome{}, nil
}
