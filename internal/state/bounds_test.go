package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeBounds(t *testing.T) {
	line := Shape{Kind: KindLine, Geometry: Geometry{X1: 150, Y1: 20, X2: 50, Y2: 120}}
	assert.Equal(t, Rect{X: 50, Y: 20, Width: 100, Height: 100}, line.Bounds())

	ellipse := Shape{Kind: KindEllipse, Geometry: Geometry{CX: 100, CY: 100, RX: 50, RY: 30}}
	assert.Equal(t, Rect{X: 50, Y: 70, Width: 100, Height: 60}, ellipse.Bounds())

	rect := Shape{Kind: KindRect, Geometry: Geometry{X: 50, Y: 50, Width: 100, Height: 80}}
	assert.Equal(t, Rect{X: 50, Y: 50, Width: 100, Height: 80}, rect.Bounds())
}

func TestStrokeWidthValue(t *testing.T) {
	for in, want := range map[string]float64{
		"1":    1,
		"2.5":  2.5,
		"4px":  4,
		" 3 ":  3,
		"wide": 1,
		"-2":   1,
		"":     1,
	} {
		s := Shape{Style: Style{StrokeWidth: in}}
		assert.Equal(t, want, s.StrokeWidthValue(), in)
	}
}

func TestPickAtTopmost(t *testing.T) {
	st := NewStore()
	under := mustShape(t, KindRect)
	over := mustShape(t, KindEllipse)
	st.Append(under)
	st.Append(over)

	got, ok := st.PickAt(Point{X: 100, Y: 100})
	require.True(t, ok)
	assert.Equal(t, over.ID, got.ID)

	got, ok = st.PickAt(Point{X: 55, Y: 60})
	require.True(t, ok)
	assert.Equal(t, under.ID, got.ID)

	_, ok = st.PickAt(Point{X: 400, Y: 400})
	assert.False(t, ok)
}

func TestPickAtThinLine(t *testing.T) {
	st := NewStore()
	line := Shape{ID: "h", Kind: KindLine, Geometry: Geometry{X1: 0, Y1: 10, X2: 100, Y2: 10}, Style: DefaultStyle}
	st.Append(line)

	_, ok := st.PickAt(Point{X: 50, Y: 12})
	assert.True(t, ok, "horizontal line must be grabbable near its stroke")
}

func TestExtent(t *testing.T) {
	st := NewStore()
	st.Append(Shape{ID: "a", Kind: KindRect, Geometry: Geometry{X: 0, Y: 0, Width: 10, Height: 10}, Style: Style{StrokeWidth: "2"}})
	st.Append(Shape{ID: "b", Kind: KindEllipse, Geometry: Geometry{CX: 50, CY: 50, RX: 10, RY: 5}, Style: Style{StrokeWidth: "2"}})

	r, ok := st.Extent()
	require.True(t, ok)
	assert.Equal(t, Rect{X: -1, Y: -1, Width: 62, Height: 57}, r)
}
