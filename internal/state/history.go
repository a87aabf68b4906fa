package state

import (
	"fmt"
	"time"
)

type ActionKind string

const (
	ActionAdd    ActionKind = "add"
	ActionModify ActionKind = "modify"
	ActionRemove ActionKind = "remove"
)

// Change is the reversible part of an Action. Each variant carries exactly
// what is needed to revert and re-apply it against the shape it names.
type Change interface {
	Kind() ActionKind
	// Field names what the change touched: "shape", "stroke", "fill",
	// "stroke_width" or "geometry".
	Field() string
	revert(st *Store, id string) error
	apply(st *Store, id string) error
}

type Added struct {
	Shape Shape
	Index int
}

type Removed struct {
	Shape Shape
	Index int
}

type StrokeChange struct{ From, To string }
type FillChange struct{ From, To string }
type WidthChange struct{ From, To string }
type GeometryChange struct{ From, To Geometry }

func (Added) Kind() ActionKind          { return ActionAdd }
func (Removed) Kind() ActionKind        { return ActionRemove }
func (StrokeChange) Kind() ActionKind   { return ActionModify }
func (FillChange) Kind() ActionKind     { return ActionModify }
func (WidthChange) Kind() ActionKind    { return ActionModify }
func (GeometryChange) Kind() ActionKind { return ActionModify }

func (Added) Field() string          { return "shape" }
func (Removed) Field() string        { return "shape" }
func (StrokeChange) Field() string   { return "stroke" }
func (FillChange) Field() string     { return "fill" }
func (WidthChange) Field() string    { return "stroke_width" }
func (GeometryChange) Field() string { return "geometry" }

func (c Added) revert(st *Store, id string) error {
	_, _, err := st.Remove(id)
	return err
}

func (c Added) apply(st *Store, _ string) error {
	st.Insert(c.Index, c.Shape)
	return nil
}

func (c Removed) revert(st *Store, _ string) error {
	st.Insert(c.Index, c.Shape)
	return nil
}

func (c Removed) apply(st *Store, id string) error {
	_, _, err := st.Remove(id)
	return err
}

func (c StrokeChange) revert(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Style.Stroke = c.From })
}

func (c StrokeChange) apply(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Style.Stroke = c.To })
}

func (c FillChange) revert(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Style.Fill = c.From })
}

func (c FillChange) apply(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Style.Fill = c.To })
}

func (c WidthChange) revert(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Style.StrokeWidth = c.From })
}

func (c WidthChange) apply(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Style.StrokeWidth = c.To })
}

func (c GeometryChange) revert(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Geometry = c.From })
}

func (c GeometryChange) apply(st *Store, id string) error {
	return st.Update(id, func(s *Shape) { s.Geometry = c.To })
}

// Action records one completed edit. Snapshot is a copy of the shape taken
// when the action was recorded and is never written afterwards.
type Action struct {
	Seq        uint64
	Kind       ActionKind
	ShapeID    string
	Snapshot   Shape
	Change     Change
	RecordedAt time.Time
}

// NewAction builds an action for the shape snapshot and change.
func NewAction(snapshot Shape, change Change) Action {
	return Action{
		Kind:     change.Kind(),
		ShapeID:  snapshot.ID,
		Snapshot: snapshot,
		Change:   change,
	}
}

// PrevFill is the fill value a fill change replaced, or "" for any other
// action.
func (a Action) PrevFill() string {
	if fc, ok := a.Change.(FillChange); ok {
		return fc.From
	}
	return ""
}

func (a Action) String() string {
	return fmt.Sprintf("#%d %s %s %s", a.Seq, a.Kind, a.Change.Field(), a.ShapeID)
}

// History is the ordered action log with a cursor at the last applied
// action; -1 means nothing can be undone.
type History struct {
	actions []Action
	cursor  int
}

func NewHistory() *History {
	return &History{cursor: -1}
}

// Record drops anything after the cursor, appends a and moves the cursor
// onto it.
func (h *History) Record(a Action) Action {
	h.actions = h.actions[:h.cursor+1]
	return h.Append(a)
}

// Append adds a after every recorded action, keeping actions that were
// undone, and moves the cursor onto it. This is how the legacy policy
// records.
func (h *History) Append(a Action) Action {
	a.Seq = nextSeq()
	if a.RecordedAt.IsZero() {
		a.RecordedAt = time.Now()
	}
	h.actions = append(h.actions, a)
	h.cursor = len(h.actions) - 1
	return a
}

// Current returns the action under the cursor.
func (h *History) Current() (Action, bool) {
	if h.cursor < 0 {
		return Action{}, false
	}
	return h.actions[h.cursor], true
}

// Undo reverts the action under the cursor against the shape it references
// and steps the cursor back. The cursor moves even when the shape is gone,
// in which case the returned error wraps ErrShapeNotFound.
func (h *History) Undo(st *Store) (Action, bool, error) {
	a, ok := h.Current()
	if !ok {
		return Action{}, false, nil
	}
	h.cursor--
	if err := a.Change.revert(st, a.ShapeID); err != nil {
		return a, true, fmt.Errorf("undo %s: %w", a, err)
	}
	return a, true, nil
}

// Redo re-applies the action after the cursor and advances it.
func (h *History) Redo(st *Store) (Action, bool, error) {
	if !h.CanRedo() {
		return Action{}, false, nil
	}
	h.cursor++
	a := h.actions[h.cursor]
	if err := a.Change.apply(st, a.ShapeID); err != nil {
		return a, true, fmt.Errorf("redo %s: %w", a, err)
	}
	return a, true, nil
}

// UndoLegacy reproduces the original editor's undo: a Modify action resets
// the fill of the topmost shape, whichever it is, to the fill held in the
// action's snapshot. Other kinds change nothing. The cursor always steps
// back.
func (h *History) UndoLegacy(st *Store) (Action, bool) {
	a, ok := h.Current()
	if !ok {
		return Action{}, false
	}
	if a.Kind == ActionModify {
		if last, ok := st.Last(); ok {
			_ = st.Update(last.ID, func(s *Shape) { s.Style.Fill = a.Snapshot.Style.Fill })
		}
	}
	h.cursor--
	return a, true
}

func (h *History) CanUndo() bool { return h.cursor >= 0 }
func (h *History) CanRedo() bool { return h.cursor+1 < len(h.actions) }
func (h *History) Len() int      { return len(h.actions) }
func (h *History) Cursor() int   { return h.cursor }

// Actions returns a copy of the full log.
func (h *History) Actions() []Action {
	out := make([]Action, len(h.actions))
	copy(out, h.actions)
	return out
}
