package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VectorBoard/internal/state"
)

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func mustAdd(t *testing.T, e *Editor, kind string) state.Shape {
	t.Helper()
	s, err := e.AddShape(kind)
	require.NoError(t, err)
	return s
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyExact, p)

	p, err = ParsePolicy(" Legacy ")
	require.NoError(t, err)
	assert.Equal(t, PolicyLegacy, p)

	_, err = ParsePolicy("single")
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}

func TestAddShapeSelectsAndRecords(t *testing.T) {
	changes := 0
	e := New(Options{OnChange: func() { changes++ }})

	s := mustAdd(t, e, "rect")
	assert.Equal(t, state.KindRect, s.Kind)
	assert.Equal(t, state.Geometry{X: 50, Y: 50, Width: 100, Height: 80}, s.Geometry)
	assert.Equal(t, state.DefaultStyle, s.Style)

	sel, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, s.ID, sel.ID)

	acts := e.Actions()
	require.Len(t, acts, 1)
	assert.Equal(t, state.ActionAdd, acts[0].Kind)
	assert.Equal(t, s, acts[0].Snapshot)
	assert.Equal(t, 1, changes)
}

func TestAddShapeRejectsUnknownKind(t *testing.T) {
	e := New(Options{})
	_, err := e.AddShape("triangle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrUnsupportedKind))
	assert.Empty(t, e.Shapes())
	assert.Equal(t, 0, e.History().Len)
}

func TestAddThenUndoRoundTrip(t *testing.T) {
	for _, kind := range []string{"line", "ellipse", "rect"} {
		t.Run(kind, func(t *testing.T) {
			e := New(Options{})
			first := mustAdd(t, e, "line")
			before := e.Shapes()

			mustAdd(t, e, kind)
			require.True(t, e.Undo())

			assert.Equal(t, before, e.Shapes())
			_, ok := e.Selected()
			assert.False(t, ok)

			require.True(t, e.Redo())
			assert.Len(t, e.Shapes(), 2)
			assert.Equal(t, first.ID, e.Shapes()[0].ID)
		})
	}
}

func TestLegacyUndoLeavesAddedShape(t *testing.T) {
	e := New(Options{Policy: PolicyLegacy})
	mustAdd(t, e, "ellipse")

	require.True(t, e.Undo())
	assert.Len(t, e.Shapes(), 1)
	assert.Equal(t, -1, e.History().Cursor)
	assert.False(t, e.Undo())
	assert.False(t, e.Redo())
}

func TestDragRecordsOneModify(t *testing.T) {
	e := New(Options{})
	s := mustAdd(t, e, "line")

	require.NoError(t, e.SelectOrBeginDrag(s.ID, pt(60, 60)))
	for i := 1; i <= 25; i++ {
		e.ContinueDrag(pt(60+float64(i), 60-float64(i)))
	}
	e.EndDrag()

	acts := e.Actions()
	require.Len(t, acts, 2)
	assert.Equal(t, state.ActionModify, acts[1].Kind)
	gc, ok := acts[1].Change.(state.GeometryChange)
	require.True(t, ok)
	assert.Equal(t, s.Geometry, gc.From)

	got, _ := e.Shape(s.ID)
	assert.Equal(t, got, acts[1].Snapshot)
	assert.Equal(t, state.Geometry{X1: 75, Y1: 25, X2: 175, Y2: 125}, got.Geometry)
	assert.False(t, e.Session().Dragging())
}

func TestDragWithoutMoveStillRecords(t *testing.T) {
	e := New(Options{})
	s := mustAdd(t, e, "rect")
	require.NoError(t, e.SelectOrBeginDrag(s.ID, pt(70, 70)))
	e.EndDrag()
	assert.Equal(t, 2, e.History().Len)

	e.EndDrag()
	assert.Equal(t, 2, e.History().Len)
}

func TestEllipseDragScenario(t *testing.T) {
	e := New(Options{})
	s := mustAdd(t, e, "ellipse")

	require.NoError(t, e.SelectOrBeginDrag(s.ID, pt(120, 100)))
	e.ContinueDrag(pt(140, 90))
	e.ContinueDrag(pt(170, 130))
	e.EndDrag()

	got, _ := e.Shape(s.ID)
	assert.Equal(t, 150.0, got.Geometry.CX)
	assert.Equal(t, 130.0, got.Geometry.CY)
	assert.Equal(t, 50.0, got.Geometry.RX)
	assert.Equal(t, 30.0, got.Geometry.RY)
}

func TestRectDragIsPathIndependent(t *testing.T) {
	paths := [][]state.Point{
		{pt(200, 200)},
		{pt(10, 300), pt(400, 5), pt(200, 200)},
	}
	for _, path := range paths {
		e := New(Options{})
		s := mustAdd(t, e, "rect")
		require.NoError(t, e.SelectOrBeginDrag(s.ID, pt(80, 90)))
		for _, p := range path {
			e.ContinueDrag(p)
		}
		e.EndDrag()

		got, _ := e.Shape(s.ID)
		// offset is (80-50, 90-50)
		assert.Equal(t, 170.0, got.Geometry.X)
		assert.Equal(t, 160.0, got.Geometry.Y)
		assert.Equal(t, 100.0, got.Geometry.Width)
	}
}

func TestDragUsesViewport(t *testing.T) {
	e := New(Options{})
	s := mustAdd(t, e, "ellipse")
	e.SetViewport(state.Viewport{Scale: 2, PanX: 10, PanY: 20})

	// canvas (100,100) is screen (210,220)
	require.NoError(t, e.SelectOrBeginDrag(s.ID, pt(210, 220)))
	e.ContinueDrag(pt(230, 240))
	e.EndDrag()

	got, _ := e.Shape(s.ID)
	assert.Equal(t, 110.0, got.Geometry.CX)
	assert.Equal(t, 110.0, got.Geometry.CY)
}

func TestPointerDownPicksTopmost(t *testing.T) {
	e := New(Options{})
	mustAdd(t, e, "rect")
	mustAdd(t, e, "line")
	e.DeleteSelected()
	require.Len(t, e.Shapes(), 1)

	top := mustAdd(t, e, "ellipse")
	hit, err := e.PointerDown(pt(100, 100))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, top.ID, e.Session().Selected)
	assert.True(t, e.Session().Dragging())
	e.EndDrag()

	hit, err = e.PointerDown(pt(700, 500))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, top.ID, e.Session().Selected)
}

func TestSelectUnknownShape(t *testing.T) {
	e := New(Options{})
	err := e.SelectOrBeginDrag("nope", pt(0, 0))
	assert.True(t, errors.Is(err, state.ErrShapeNotFound))
}

func TestStyleMutators(t *testing.T) {
	e := New(Options{})
	s := mustAdd(t, e, "rect")

	e.SetStroke("#00ff00")
	e.SetFill("tomato")
	e.SetStrokeWidth("4px")

	got, _ := e.Shape(s.ID)
	assert.Equal(t, state.Style{Stroke: "#00ff00", Fill: "tomato", StrokeWidth: "4px"}, got.Style)

	acts := e.Actions()
	require.Len(t, acts, 4)
	assert.Equal(t, state.StrokeChange{From: "#000000", To: "#00ff00"}, acts[1].Change)
	assert.Equal(t, state.FillChange{From: "#ffffff", To: "tomato"}, acts[2].Change)
	assert.Equal(t, state.WidthChange{From: "1", To: "4px"}, acts[3].Change)

	// snapshots are taken before the change
	assert.Equal(t, "#000000", acts[1].Snapshot.Style.Stroke)
	assert.Equal(t, "#ffffff", acts[2].Snapshot.Style.Fill)
	assert.Equal(t, "1", acts[3].Snapshot.Style.StrokeWidth)

	for e.Undo() {
	}
	assert.Empty(t, e.Shapes())
	for e.Redo() {
	}
	got, _ = e.Shape(s.ID)
	assert.Equal(t, "tomato", got.Style.Fill)
}

func TestDeleteClearsSelection(t *testing.T) {
	e := New(Options{})
	mustAdd(t, e, "line")
	e.DeleteSelected()

	assert.Empty(t, e.Shapes())
	assert.False(t, e.Session().HasSelection())
	n := e.History().Len

	e.SetFill("#ff0000")
	e.SetStroke("#ff0000")
	e.DeleteSelected()
	assert.Equal(t, n, e.History().Len)

	require.True(t, e.Undo())
	assert.Len(t, e.Shapes(), 1)
}

func TestLegacyFillScenario(t *testing.T) {
	t.Run("single rect", func(t *testing.T) {
		e := New(Options{Policy: PolicyLegacy})
		r := mustAdd(t, e, "rect")
		e.SetFill("#ff0000")
		require.True(t, e.Undo())

		got, _ := e.Shape(r.ID)
		assert.Equal(t, "#ffffff", got.Style.Fill)
	})

	t.Run("wrong target", func(t *testing.T) {
		e := New(Options{Policy: PolicyLegacy})
		r := mustAdd(t, e, "rect")
		e.SetFill("#ff0000")
		later := mustAdd(t, e, "line")
		e.SetFill("#0000ff")

		// undo the fill on the line, then the line's add, then the rect fill
		require.True(t, e.Undo())
		require.True(t, e.Undo())
		require.True(t, e.Undo())

		gotRect, _ := e.Shape(r.ID)
		gotLine, _ := e.Shape(later.ID)
		assert.Equal(t, "#ff0000", gotRect.Style.Fill)
		assert.Equal(t, "#ffffff", gotLine.Style.Fill)
	})
}

func TestLegacyRecordAfterUndoKeepsActions(t *testing.T) {
	e := New(Options{Policy: PolicyLegacy})
	rect := mustAdd(t, e, "rect")
	e.SetFill("#ff0000")
	e.SetFill("#0000ff")
	require.True(t, e.Undo())
	e.SetFill("#00ff00")
	require.True(t, e.Undo())
	require.True(t, e.Undo())

	assert.Equal(t, 4, e.History().Len)
	assert.Equal(t, 1, e.History().Cursor)
	got, _ := e.Shape(rect.ID)
	assert.Equal(t, "#ff0000", got.Style.Fill)
}

func TestExactUndoTargetsModifiedShape(t *testing.T) {
	e := New(Options{})
	r := mustAdd(t, e, "rect")
	e.SetFill("#ff0000")
	mustAdd(t, e, "line")
	require.NoError(t, e.SelectOrBeginDrag(r.ID, pt(60, 60)))
	e.EndDrag()
	e.SetStroke("#123456")

	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.True(t, e.Undo())

	got, _ := e.Shape(r.ID)
	assert.Equal(t, "#ffffff", got.Style.Fill)
	assert.Equal(t, "#000000", got.Style.Stroke)
	assert.Len(t, e.Shapes(), 1)
}

func TestRecordAfterUndoDropsRedo(t *testing.T) {
	e := New(Options{})
	mustAdd(t, e, "line")
	e.SetFill("#ff0000")
	require.True(t, e.Undo())
	assert.True(t, e.History().CanRedo)

	e.SetStroke("#00ff00")
	assert.False(t, e.History().CanRedo)
	assert.False(t, e.Redo())
	assert.Equal(t, 2, e.History().Len)
}

func TestUndoDuringDragCancelsMove(t *testing.T) {
	e := New(Options{})
	s := mustAdd(t, e, "ellipse")
	require.NoError(t, e.SelectOrBeginDrag(s.ID, pt(100, 100)))
	e.ContinueDrag(pt(300, 300))

	require.True(t, e.Undo())
	got, _ := e.Shape(s.ID)
	assert.Equal(t, s.Geometry, got.Geometry)
	assert.False(t, e.Session().Dragging())
}

func TestViewportOperations(t *testing.T) {
	e := New(Options{})
	e.Pan(5, -5)
	assert.Equal(t, state.Viewport{Scale: 1, PanX: 5, PanY: -5}, e.Viewport())

	e.Zoom(100, pt(0, 0))
	assert.Equal(t, state.MaxScale, e.Viewport().Scale)

	e.SetViewport(state.Viewport{})
	assert.Equal(t, 1.0, e.Viewport().Scale)

	e.SetViewport(state.Viewport{Scale: -2})
	assert.Equal(t, state.MinScale, e.Viewport().Scale)

	e.SetViewport(state.Viewport{Scale: 1e-12})
	assert.InDelta(t, 1/state.MinScale, e.Viewport().ToCanvas(pt(1, 1)).X, 1e-9)
}

func TestSnapshotIsDetached(t *testing.T) {
	e := New(Options{})
	mustAdd(t, e, "rect")
	doc := e.Snapshot()
	e.SetFill("#ff0000")

	require.Len(t, doc.Shapes, 1)
	assert.Equal(t, "#ffffff", doc.Shapes[0].Style.Fill)
	assert.Equal(t, 800.0, doc.Canvas.Width)
	assert.Equal(t, 600.0, doc.Canvas.Height)
}

func TestMetricsAreOptional(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAction(state.NewAction(state.Shape{}, state.Added{}))
		m.RecordStep("undo", PolicyExact)
	})

	e := New(Options{Metrics: NewMetrics()})
	mustAdd(t, e, "line")
	assert.True(t, e.Undo())
	assert.Same(t, NewMetrics(), NewMetrics())
}
