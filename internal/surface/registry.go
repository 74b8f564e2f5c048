package surface

import (
	"fmt"
	"sort"

	"github.com/gyaneshwarpardhi/productflow/internal/input"
)

// Outcome is what the surface reports back to the platform for one event.
type Outcome struct {
	Handled        bool   `json:"handled"`
	PreventDefault bool   `json:"prevent_default"`
	NodeID         string `json:"node_id,omitempty"` // node created by a drop
	EdgeID         string `json:"edge_id,omitempty"` // edge created by a connect
}

// HandlerFunc turns one input event into editor calls.
type HandlerFunc func(ev *input.Event) (Outcome, error)

// Registry maps event types to their handlers.
// Register is only called while the surface is being built.
type Registry struct {
	handlers map[input.Type]HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[input.Type]HandlerFunc)}
}

// Register adds a handler. Panics on duplicate type to surface miswiring early.
func (r *Registry) Register(t input.Type, fn HandlerFunc) {
	if _, exists := r.handlers[t]; exists {
		panic(fmt.Sprintf("surface registry: duplicate handler for %q", t))
	}
	r.handlers[t] = fn
}

// Get returns the handler for the given type.
func (r *Registry) Get(t input.Type) (HandlerFunc, error) {
	fn, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: no handler registered for %q", input.ErrUnknownEvent, t)
	}
	return fn, nil
}

// Types returns all registered event types, sorted.
func (r *Registry) Types() []input.Type {
	out := make([]input.Type, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
