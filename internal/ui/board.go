package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	"VectorBoard/internal/state"
)

// zoomStep is the scale factor applied per wheel notch.
const zoomStep = 1.2

// BoardWidget is the drawing surface. It renders the editor's shapes through
// the editor viewport and turns pointer input into editor operations.
type BoardWidget struct {
	widget.BaseWidget
	ed *editor.Editor

	// panning is true while a drag that started on empty canvas moves the
	// viewport instead of a shape.
	panning bool

	// OnStatus receives short messages for the status bar.
	OnStatus func(string)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(ed *editor.Editor) *BoardWidget {
	b := &BoardWidget{ed: ed}
	b.ExtendBaseWidget(b)
	ed.SetOnChange(b.Refresh)
	return b
}

func (b *BoardWidget) Editor() *editor.Editor { return b.ed }

func (b *BoardWidget) status(msg string) {
	if b.OnStatus != nil {
		b.OnStatus(msg)
	}
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	hit, err := b.ed.PointerDown(toPoint(e.Position))
	if err != nil {
		b.status(err.Error())
		return
	}
	b.panning = !hit
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.finishGesture()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.ed.Session().Dragging() {
		b.ed.ContinueDrag(toPoint(e.Position))
		return
	}
	if b.panning {
		b.ed.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
	}
}

func (b *BoardWidget) DragEnd() {
	b.finishGesture()
}

func (b *BoardWidget) finishGesture() {
	b.panning = false
	if b.ed.Session().Dragging() {
		b.ed.EndDrag()
	}
}

// Scrolled zooms around the pointer.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	switch {
	case e.Scrolled.DY > 0:
		b.ed.Zoom(zoomStep, toPoint(e.Position))
	case e.Scrolled.DY < 0:
		b.ed.Zoom(1/zoomStep, toPoint(e.Position))
	}
}

func (b *BoardWidget) ResetView() {
	b.ed.SetViewport(state.IdentityViewport)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	r.rebuild()
	return r
}

type boardRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Layout(size fyne.Size) { r.background.Resize(size) }

func (r *boardRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardRenderer) Destroy() {}

func (r *boardRenderer) rebuild() {
	ed := r.board.ed
	vp := ed.Viewport()
	scale := float32(vp.Scale)

	objects := []fyne.CanvasObject{r.background}
	for _, s := range ed.Shapes() {
		if obj := shapeObject(s, vp, scale); obj != nil {
			objects = append(objects, obj)
		}
	}
	if sel, ok := ed.Selected(); ok {
		objects = append(objects, selectionFrame(sel, vp))
	}
	r.objects = objects
}

func screenPos(vp state.Viewport, x, y float64) fyne.Position {
	p := vp.ToScreen(state.Point{X: x, Y: y})
	return fyne.NewPos(float32(p.X), float32(p.Y))
}

func paintColor(v string) color.Color {
	c, ok, err := export.ParseColor(v)
	switch {
	case err != nil:
		return color.Black
	case !ok:
		return color.Transparent
	}
	return c
}

func shapeObject(s state.Shape, vp state.Viewport, scale float32) fyne.CanvasObject {
	g := s.Geometry
	width := float32(s.StrokeWidthValue()) * scale
	stroke := paintColor(s.Style.Stroke)

	switch s.Kind {
	case state.KindLine:
		l := canvas.NewLine(stroke)
		l.StrokeWidth = width
		l.Position1 = screenPos(vp, g.X1, g.Y1)
		l.Position2 = screenPos(vp, g.X2, g.Y2)
		return l
	case state.KindEllipse:
		c := canvas.NewCircle(paintColor(s.Style.Fill))
		c.StrokeColor = stroke
		c.StrokeWidth = width
		c.Position1 = screenPos(vp, g.CX-g.RX, g.CY-g.RY)
		c.Position2 = screenPos(vp, g.CX+g.RX, g.CY+g.RY)
		return c
	case state.KindRect:
		rect := canvas.NewRectangle(paintColor(s.Style.Fill))
		rect.StrokeColor = stroke
		rect.StrokeWidth = width
		rect.Move(screenPos(vp, g.X, g.Y))
		rect.Resize(fyne.NewSize(float32(g.Width)*scale, float32(g.Height)*scale))
		return rect
	}
	return nil
}

func selectionFrame(s state.Shape, vp state.Viewport) fyne.CanvasObject {
	bounds := s.HitBounds().Inflate(2)
	frame := canvas.NewRectangle(color.Transparent)
	frame.StrokeColor = theme.Color(theme.ColorNamePrimary)
	frame.StrokeWidth = 1
	frame.Move(screenPos(vp, bounds.X, bounds.Y))
	frame.Resize(fyne.NewSize(
		float32(math.Max(bounds.Width*vp.Scale, 1)),
		float32(math.Max(bounds.Height*vp.Scale, 1)),
	))
	return frame
}
