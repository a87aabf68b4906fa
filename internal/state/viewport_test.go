package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Scale: 2, PanX: 10, PanY: -20}
	canvas := v.ToCanvas(Point{X: 110, Y: 80})
	assert.Equal(t, Point{X: 50, Y: 50}, canvas)
	assert.Equal(t, Point{X: 110, Y: 80}, v.ToScreen(canvas))
}

func TestViewportZeroScaleIsIdentity(t *testing.T) {
	assert.Equal(t, Point{X: 7, Y: 8}, Viewport{}.ToCanvas(Point{X: 7, Y: 8}))
}

func TestViewportZoomKeepsAnchor(t *testing.T) {
	v := IdentityViewport.Panned(30, 40)
	anchor := Point{X: 200, Y: 100}
	before := v.ToCanvas(anchor)

	z := v.Zoomed(1.5, anchor)
	assert.InDelta(t, 1.5, z.Scale, 1e-9)
	after := z.ToCanvas(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestViewportZoomClamps(t *testing.T) {
	v := IdentityViewport.Zoomed(100, Point{})
	assert.Equal(t, MaxScale, v.Scale)
	v = IdentityViewport.Zoomed(0.001, Point{})
	assert.Equal(t, MinScale, v.Scale)
}

func TestViewportClamped(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 1},
		{-2, MinScale},
		{1e-12, MinScale},
		{50, MaxScale},
		{1.5, 1.5},
	}
	for _, c := range cases {
		v := Viewport{Scale: c.in, PanX: 4, PanY: 5}.Clamped()
		assert.Equal(t, c.want, v.Scale, "scale %v", c.in)
		assert.Equal(t, 4.0, v.PanX)
	}
}
