// Package editor is the controller every host drives: it owns the shape
// store, the action history, the selection and drag session and the
// viewport, and applies each user operation to them in one synchronous
// step.
//
// An Editor is not safe for concurrent use. Hosts call it from a single
// goroutine (the fyne main loop, or one websocket read loop).
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"VectorBoard/internal/export"
	"VectorBoard/internal/observability"
	"VectorBoard/internal/state"
)

// UndoPolicy selects how Undo reverses history.
type UndoPolicy string

const (
	// PolicyExact reverses exactly what each action recorded on the shape
	// it references, and supports redo.
	PolicyExact UndoPolicy = "exact"
	// PolicyLegacy reproduces the original editor: only Modify actions
	// have an effect, and they reset the fill of the topmost shape.
	PolicyLegacy UndoPolicy = "legacy"
)

var ErrUnknownPolicy = errors.New("editor: unknown undo policy")

func ParsePolicy(name string) (UndoPolicy, error) {
	switch UndoPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case PolicyExact, "":
		return PolicyExact, nil
	case PolicyLegacy:
		return PolicyLegacy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

type Options struct {
	Policy  UndoPolicy
	Logger  *slog.Logger
	Metrics *Metrics
	// Canvas sizes the exported document. Zero fields take the defaults
	// of 800x600 on white.
	Canvas export.Canvas
	// OnChange runs after every operation that changed what is visible.
	OnChange func()
}

type Editor struct {
	store    *state.Store
	history  *state.History
	session  state.Session
	viewport state.Viewport

	canvas   export.Canvas
	policy   UndoPolicy
	logger   *slog.Logger
	metrics  *Metrics
	onChange func()
}

func New(opts Options) *Editor {
	if opts.Policy == "" {
		opts.Policy = PolicyExact
	}
	return &Editor{
		store:    state.NewStore(),
		history:  state.NewHistory(),
		viewport: state.IdentityViewport,
		canvas:   opts.Canvas.WithDefaults(),
		policy:   opts.Policy,
		logger:   observability.Component(opts.Logger, "editor"),
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
	}
}

func (e *Editor) SetOnChange(fn func()) { e.onChange = fn }

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

func (e *Editor) record(a state.Action) {
	if e.policy == PolicyLegacy {
		a = e.history.Append(a)
	} else {
		a = e.history.Record(a)
	}
	e.metrics.RecordAction(a)
	e.logger.Debug("action recorded", "seq", a.Seq, "kind", a.Kind, "field", a.Change.Field(), "shape", a.ShapeID)
}

// AddShape creates a default shape of the named kind on top of the canvas,
// selects it and records an Add action.
func (e *Editor) AddShape(kind string) (state.Shape, error) {
	k, err := state.ParseKind(kind)
	if err != nil {
		return state.Shape{}, err
	}
	s, err := state.NewShape(k)
	if err != nil {
		return state.Shape{}, err
	}
	idx := e.store.Append(s)
	e.session = e.session.Select(s.ID)
	e.record(state.NewAction(s, state.Added{Shape: s, Index: idx}))
	e.changed()
	return s, nil
}

// PointerDown picks the topmost shape under the screen point and begins
// dragging it. It reports whether a shape was hit; a miss leaves the
// selection unchanged.
func (e *Editor) PointerDown(screen state.Point) (bool, error) {
	hit, ok := e.PickAt(screen)
	if !ok {
		return false, nil
	}
	return true, e.SelectOrBeginDrag(hit.ID, screen)
}

// PickAt returns the topmost shape under the screen point without changing
// the selection.
func (e *Editor) PickAt(screen state.Point) (state.Shape, bool) {
	return e.store.PickAt(e.viewport.ToCanvas(screen))
}

// SelectOrBeginDrag selects the shape and starts a drag session at the
// screen point.
func (e *Editor) SelectOrBeginDrag(id string, screen state.Point) error {
	s, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", state.ErrShapeNotFound, id)
	}
	e.session = e.session.BeginDrag(s, e.viewport.ToCanvas(screen))
	e.changed()
	return nil
}

// ContinueDrag moves the dragged shape so it follows the pointer. It does
// nothing outside a drag.
func (e *Editor) ContinueDrag(screen state.Point) {
	d := e.session.Drag
	if d == nil {
		return
	}
	g := d.GeometryAt(e.viewport.ToCanvas(screen))
	if err := e.store.Update(d.ShapeID, func(s *state.Shape) { s.Geometry = g }); err != nil {
		e.logger.Warn("drag target vanished", "shape", d.ShapeID, "error", err)
		e.session = e.session.EndDrag()
		return
	}
	e.changed()
}

// EndDrag closes the drag session and records one Modify action for the
// whole gesture.
func (e *Editor) EndDrag() {
	d := e.session.Drag
	if d == nil {
		return
	}
	e.session = e.session.EndDrag()
	s, ok := e.store.Get(d.ShapeID)
	if !ok {
		return
	}
	e.record(state.NewAction(s, state.GeometryChange{From: d.StartGeometry, To: s.Geometry}))
	e.changed()
}

func (e *Editor) SetStroke(color string) {
	e.restyle(func(st *state.Style) state.Change {
		c := state.StrokeChange{From: st.Stroke, To: color}
		st.Stroke = color
		return c
	})
}

func (e *Editor) SetFill(color string) {
	e.restyle(func(st *state.Style) state.Change {
		c := state.FillChange{From: st.Fill, To: color}
		st.Fill = color
		return c
	})
}

func (e *Editor) SetStrokeWidth(width string) {
	e.restyle(func(st *state.Style) state.Change {
		c := state.WidthChange{From: st.StrokeWidth, To: width}
		st.StrokeWidth = width
		return c
	})
}

// restyle snapshots the selected shape, lets fn rewrite its style and
// records the change fn reports.
func (e *Editor) restyle(fn func(*state.Style) state.Change) {
	before, ok := e.Selected()
	if !ok {
		return
	}
	var change state.Change
	if err := e.store.Update(before.ID, func(s *state.Shape) { change = fn(&s.Style) }); err != nil {
		return
	}
	e.record(state.NewAction(before, change))
	e.changed()
}

// DeleteSelected removes the selected shape and clears the selection.
func (e *Editor) DeleteSelected() {
	if !e.session.HasSelection() {
		return
	}
	e.EndDrag()
	id := e.session.Selected
	s, idx, err := e.store.Remove(id)
	e.session = e.session.Deselect()
	if err != nil {
		e.logger.Warn("selected shape missing", "shape", id)
		return
	}
	e.record(state.NewAction(s, state.Removed{Shape: s, Index: idx}))
	e.changed()
}

// Undo steps history back once according to the editor's policy and
// reports whether there was anything to undo. An active drag is committed
// first, so undo during a drag returns the shape to where it started.
func (e *Editor) Undo() bool {
	e.EndDrag()

	var (
		a  state.Action
		ok bool
	)
	switch e.policy {
	case PolicyLegacy:
		a, ok = e.history.UndoLegacy(e.store)
	default:
		var err error
		a, ok, err = e.history.Undo(e.store)
		if err != nil {
			e.logger.Warn("undo could not be applied", "error", err)
		}
	}
	if !ok {
		return false
	}
	e.dropStaleSelection()
	e.metrics.RecordStep("undo", e.policy)
	e.logger.Debug("undo", "seq", a.Seq, "kind", a.Kind, "policy", e.policy)
	e.changed()
	return true
}

// Redo re-applies the most recently undone action. The legacy policy has
// no redo.
func (e *Editor) Redo() bool {
	if e.policy == PolicyLegacy {
		return false
	}
	e.EndDrag()
	a, ok, err := e.history.Redo(e.store)
	if err != nil {
		e.logger.Warn("redo could not be applied", "error", err)
	}
	if !ok {
		return false
	}
	e.dropStaleSelection()
	e.metrics.RecordStep("redo", e.policy)
	e.logger.Debug("redo", "seq", a.Seq, "kind", a.Kind)
	e.changed()
	return true
}

func (e *Editor) dropStaleSelection() {
	if !e.session.HasSelection() {
		return
	}
	if _, ok := e.store.Get(e.session.Selected); !ok {
		e.session = e.session.Deselect()
	}
}

// Selected returns the selected shape, if any.
func (e *Editor) Selected() (state.Shape, bool) {
	if !e.session.HasSelection() {
		return state.Shape{}, false
	}
	return e.store.Get(e.session.Selected)
}

func (e *Editor) Session() state.Session { return e.session }

// Shapes returns the shapes bottom to top.
func (e *Editor) Shapes() []state.Shape { return e.store.Shapes() }

func (e *Editor) Shape(id string) (state.Shape, bool) { return e.store.Get(id) }

func (e *Editor) Store() *state.Store { return e.store }

func (e *Editor) Policy() UndoPolicy { return e.policy }

func (e *Editor) Actions() []state.Action { return e.history.Actions() }

// HistoryInfo summarizes the action history for display.
type HistoryInfo struct {
	Len     int  `json:"len"`
	Cursor  int  `json:"cursor"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

func (e *Editor) History() HistoryInfo {
	return HistoryInfo{
		Len:     e.history.Len(),
		Cursor:  e.history.Cursor(),
		CanUndo: e.history.CanUndo(),
		CanRedo: e.policy == PolicyExact && e.history.CanRedo(),
	}
}

func (e *Editor) Viewport() state.Viewport { return e.viewport }

// SetViewport replaces the transform, clamping its scale.
func (e *Editor) SetViewport(v state.Viewport) {
	e.viewport = v.Clamped()
	e.changed()
}

func (e *Editor) Pan(dx, dy float64) {
	e.SetViewport(e.viewport.Panned(dx, dy))
}

func (e *Editor) Zoom(factor float64, anchor state.Point) {
	e.SetViewport(e.viewport.Zoomed(factor, anchor))
}

func (e *Editor) Canvas() export.Canvas { return e.canvas }

// Snapshot copies the canvas for export. Edits made after it returns are
// not part of the document.
func (e *Editor) Snapshot() export.Document {
	return export.Document{Canvas: e.canvas, Shapes: e.store.Shapes()}
}
