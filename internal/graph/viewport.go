package graph

// Point is a location in screen space relative to the canvas wrapper.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the pan/zoom transform reported by the render engine.
// A zero Zoom is treated as 1.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Project converts a screen point into canvas space.
func (v Viewport) Project(p Point) Position {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return Position{
		X: (p.X - v.X) / zoom,
		Y: (p.Y - v.Y) / zoom,
	}
}
