package state

import "math"

const (
	MinScale = 0.3
	MaxScale = 3.0
)

// Viewport is the drawing surface's transform: screen = canvas*Scale + Pan.
type Viewport struct {
	Scale float64 `json:"scale"`
	PanX  float64 `json:"pan_x"`
	PanY  float64 `json:"pan_y"`
}

var IdentityViewport = Viewport{Scale: 1}

func (v Viewport) scale() float64 {
	if v.Scale == 0 {
		return 1
	}
	return v.Scale
}

// ToCanvas converts a screen-space pointer position into canvas space.
func (v Viewport) ToCanvas(screen Point) Point {
	s := v.scale()
	return Point{X: (screen.X - v.PanX) / s, Y: (screen.Y - v.PanY) / s}
}

// ToScreen is the inverse of ToCanvas.
func (v Viewport) ToScreen(canvas Point) Point {
	s := v.scale()
	return Point{X: canvas.X*s + v.PanX, Y: canvas.Y*s + v.PanY}
}

func (v Viewport) Panned(dx, dy float64) Viewport {
	v.PanX += dx
	v.PanY += dy
	return v
}

// Clamped returns v with its scale limited to [MinScale, MaxScale]. A zero
// or non-finite scale becomes 1.
func (v Viewport) Clamped() Viewport {
	switch {
	case v.Scale == 0 || math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0):
		v.Scale = 1
	case v.Scale < MinScale:
		v.Scale = MinScale
	case v.Scale > MaxScale:
		v.Scale = MaxScale
	}
	return v
}

// Zoomed multiplies the scale by factor around the screen point anchor,
// clamping to [MinScale, MaxScale].
func (v Viewport) Zoomed(factor float64, anchor Point) Viewport {
	before := v.ToCanvas(anchor)
	v.Scale = v.scale() * factor
	v = v.Clamped()
	v.PanX = anchor.X - before.X*v.Scale
	v.PanY = anchor.Y - before.Y*v.Scale
	return v
}
