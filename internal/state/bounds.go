package state

import (
	"math"
	"strconv"
	"strings"
)

// Rect is an axis-aligned area in canvas space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Bounds is the geometric extent of s without its stroke.
func (s Shape) Bounds() Rect {
	g := s.Geometry
	switch s.Kind {
	case KindLine:
		minX, maxX := math.Min(g.X1, g.X2), math.Max(g.X1, g.X2)
		minY, maxY := math.Min(g.Y1, g.Y2), math.Max(g.Y1, g.Y2)
		return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	case KindEllipse:
		return Rect{X: g.CX - g.RX, Y: g.CY - g.RY, Width: 2 * g.RX, Height: 2 * g.RY}
	default:
		return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
	}
}

// HitBounds is the area a pointer-down must fall in to grab s.
func (s Shape) HitBounds() Rect {
	pad := s.StrokeWidthValue() / 2
	if s.Kind == KindLine && pad < 3 {
		pad = 3
	}
	return s.Bounds().Inflate(pad)
}

// StrokeWidthValue interprets the verbatim width the way a browser would,
// ignoring a trailing "px". Unparseable widths count as 1.
func (s Shape) StrokeWidthValue() float64 {
	v := strings.TrimSuffix(strings.TrimSpace(s.Style.StrokeWidth), "px")
	w, err := strconv.ParseFloat(v, 64)
	if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 1
	}
	return w
}

// PickAt returns the topmost shape whose hit bounds contain p.
func (st *Store) PickAt(p Point) (Shape, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for i := len(st.shapes) - 1; i >= 0; i-- {
		if st.shapes[i].HitBounds().Contains(p) {
			return st.shapes[i], true
		}
	}
	return Shape{}, false
}

// Extent is the union of every shape's stroked bounds; ok is false for an
// empty store.
func (st *Store) Extent() (r Rect, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for i, s := range st.shapes {
		b := s.Bounds().Inflate(s.StrokeWidthValue() / 2)
		if i == 0 {
			r = b
			continue
		}
		r = r.Union(b)
	}
	return r, len(st.shapes) > 0
}
