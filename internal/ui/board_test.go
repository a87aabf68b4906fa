package ui

import (
	"context"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	"VectorBoard/internal/state"
)

func newTestBoard(t *testing.T) *BoardWidget {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	return NewBoardWidget(editor.New(editor.Options{}))
}

func mouse(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y, dx, dy float32) *fyne.DragEvent {
	return &fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Dragged:    fyne.NewDelta(dx, dy),
	}
}

func TestBoardDragsShape(t *testing.T) {
	b := newTestBoard(t)
	s, err := b.ed.AddShape("ellipse")
	require.NoError(t, err)

	b.MouseDown(mouse(120, 100))
	b.Dragged(drag(150, 110, 30, 10))
	b.Dragged(drag(170, 130, 20, 20))
	b.DragEnd()
	b.MouseUp(mouse(170, 130))

	got, _ := b.ed.Shape(s.ID)
	assert.Equal(t, 150.0, got.Geometry.CX)
	assert.Equal(t, 130.0, got.Geometry.CY)
	assert.Equal(t, 2, b.ed.History().Len)
}

func TestBoardPansOnEmptyCanvas(t *testing.T) {
	b := newTestBoard(t)
	_, err := b.ed.AddShape("rect")
	require.NoError(t, err)

	b.MouseDown(mouse(600, 500))
	b.Dragged(drag(610, 505, 10, 5))
	b.DragEnd()

	assert.Equal(t, state.Viewport{Scale: 1, PanX: 10, PanY: 5}, b.ed.Viewport())
	assert.Equal(t, 1, b.ed.History().Len)
}

func TestBoardScrollZooms(t *testing.T) {
	b := newTestBoard(t)
	b.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 1)})
	assert.InDelta(t, zoomStep, b.ed.Viewport().Scale, 1e-9)

	b.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -1)})
	assert.InDelta(t, 1.0, b.ed.Viewport().Scale, 1e-9)

	b.ed.Pan(40, 40)
	b.ResetView()
	assert.Equal(t, state.IdentityViewport, b.ed.Viewport())
}

func TestBoardRendersShapesAndSelection(t *testing.T) {
	b := newTestBoard(t)
	r := test.WidgetRenderer(b)
	assert.Len(t, r.Objects(), 1)

	_, err := b.ed.AddShape("line")
	require.NoError(t, err)
	_, err = b.ed.AddShape("ellipse")
	require.NoError(t, err)
	_, err = b.ed.AddShape("rect")
	require.NoError(t, err)

	objs := r.Objects()
	require.Len(t, objs, 5)
	assert.IsType(t, &canvas.Line{}, objs[1])
	assert.IsType(t, &canvas.Circle{}, objs[2])
	assert.IsType(t, &canvas.Rectangle{}, objs[3])

	rect := objs[3].(*canvas.Rectangle)
	assert.Equal(t, fyne.NewPos(50, 50), rect.Position())
	assert.Equal(t, fyne.NewSize(100, 80), rect.Size())

	b.ed.DeleteSelected()
	assert.Len(t, r.Objects(), 3)
}

func TestBoardRenderFollowsViewport(t *testing.T) {
	b := newTestBoard(t)
	r := test.WidgetRenderer(b)
	_, err := b.ed.AddShape("rect")
	require.NoError(t, err)
	b.ed.SetViewport(state.Viewport{Scale: 2, PanX: 10, PanY: 0})

	rect := r.Objects()[1].(*canvas.Rectangle)
	assert.Equal(t, fyne.NewPos(110, 100), rect.Position())
	assert.Equal(t, fyne.NewSize(200, 160), rect.Size())
}

func TestToolbarAppliesStyle(t *testing.T) {
	b := newTestBoard(t)
	tb := NewToolbar(b)
	_ = tb.Build()

	tb.addShape(state.KindRect)
	tb.applyColor("#ff0000")
	tb.target.SetSelected(paintFill)
	tb.applyColor("#00ff00")
	tb.applyWidth(2.5)

	sel, ok := b.ed.Selected()
	require.True(t, ok)
	assert.Equal(t, state.Style{Stroke: "#ff0000", Fill: "#00ff00", StrokeWidth: "2.5"}, sel.Style)

	var exported export.Format
	tb.OnExport = func(f export.Format) { exported = f }
	tb.export(export.FormatPDF)
	assert.Equal(t, export.FormatPDF, exported)
}

func TestToolbarReportsBadKind(t *testing.T) {
	b := newTestBoard(t)
	var msg string
	b.OnStatus = func(s string) { msg = s }
	NewToolbar(b).addShape("triangle")
	assert.Contains(t, msg, "triangle")
}

func TestNewWindowWiresKeys(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	w := NewWindow(a, AppOptions{ShareLink: "http://10.0.0.2:8888/"})
	defer w.Close()
	assert.Contains(t, w.Status.Text, "10.0.0.2")

	ed := w.Board.ed
	_, err := ed.AddShape("line")
	require.NoError(t, err)

	// SetOnTypedKey handler
	w.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyDelete})
	assert.Empty(t, ed.Shapes())
}

func TestWriterSinkClosesWriter(t *testing.T) {
	w := &memWriter{}
	err := writerSink{w: w}.Save(context.Background(), export.Artifact{Data: []byte("abc")})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(w.data))
	assert.True(t, w.closed)
}

type memWriter struct {
	data   []byte
	closed bool
}

func (m *memWriter) Write(p []byte) (int, error) {
	m.data = append(m.data, p...)
	return len(p), nil
}

func (m *memWriter) Close() error {
	m.closed = true
	return nil
}

func (m *memWriter) URI() fyne.URI { return nil }
