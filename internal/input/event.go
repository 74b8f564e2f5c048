// Package input defines the wire form of the platform input events the
// render engine forwards to the editor backend.
package input

import (
	"errors"
	"fmt"
	"time"

	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/graph"
)

// Type discriminates input events.
type Type string

const (
	TypeDrop        Type = "drop"         // catalog item dropped on the canvas
	TypeConnect     Type = "connect"      // pointer connect gesture completed
	TypeDeleteNode  Type = "delete_node"  // node delete button
	TypeDeleteEdge  Type = "delete_edge"  // edge midpoint delete control
	TypeNodeDrag    Type = "node_drag"    // node position update
	TypeSelect      Type = "select"       // selection changed in the render engine
	TypeKey         Type = "key"          // keydown
	TypeUndo        Type = "undo"         // Undo button
	TypeRedo        Type = "redo"         // Redo button
	TypeToggleTheme Type = "toggle_theme" // theme button
	TypeSetTheme    Type = "set_theme"
)

var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrInvalidEvent = errors.New("invalid event")
)

// KeyStroke is a keydown with its modifier state.
type KeyStroke struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// Event is the canonical input model. Which fields are meaningful depends on Type.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type" validate:"required,max=32"`
	OccurredAt time.Time `json:"occurred_at"`
	ReceivedAt time.Time `json:"-"`

	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`

	// connect
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`

	// drop: the item travels with the event; ItemID is resolved through the catalog otherwise.
	Item     *catalog.Item   `json:"item,omitempty"`
	ItemID   int             `json:"item_id,omitempty" validate:"gte=0"`
	Screen   *graph.Point    `json:"screen,omitempty"`
	Viewport graph.Viewport  `json:"viewport"`
	Position *graph.Position `json:"position,omitempty"` // drop (already projected) and node_drag

	// node_drag
	Dragging bool `json:"dragging"`

	// select
	NodeIDs []string `json:"node_ids,omitempty" validate:"omitempty,dive,required"`
	EdgeIDs []string `json:"edge_ids,omitempty" validate:"omitempty,dive,required"`

	Key  *KeyStroke `json:"key,omitempty"`
	Dark *bool      `json:"dark,omitempty"`
}

// Validate checks that the fields required by the event type are present.
func (ev *Event) Validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s event requires %s", ErrInvalidEvent, ev.Type, field)
	}
	switch ev.Type {
	case TypeDrop:
		if ev.Position == nil && ev.Screen == nil {
			return missing("position or screen")
		}
	case TypeConnect:
		if ev.Source == "" || ev.Target == "" {
			return missing("source and target")
		}
	case TypeDeleteNode:
		if ev.NodeID == "" {
			return missing("node_id")
		}
	case TypeDeleteEdge:
		if ev.EdgeID == "" {
			return missing("edge_id")
		}
	case TypeNodeDrag:
		if ev.NodeID == "" || ev.Position == nil {
			return missing("node_id and position")
		}
	case TypeKey:
		if ev.Key == nil || ev.Key.Key == "" {
			return missing("key")
		}
	case TypeSetTheme:
		if ev.Dark == nil {
			return missing("dark")
		}
	case TypeSelect, TypeUndo, TypeRedo, TypeToggleTheme:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// CanvasPosition returns where a drop lands in canvas space: the explicit
// position if the client already projected it, else the screen point
// projected through the viewport.
func (ev *Event) CanvasPosition() graph.Position {
	if ev.Position != nil {
		return *ev.Position
	}
	if ev.Screen != nil {
		return ev.Viewport.Project(*ev.Screen)
	}
	return graph.Position{}
}
