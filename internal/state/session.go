package state

// DragSession is the state of one pointer-down to pointer-up gesture.
// Positions are in canvas space.
type DragSession struct {
	ShapeID       string
	Kind          ShapeKind
	StartPointer  Point
	StartGeometry Geometry
	// Offset is StartPointer minus the rectangle origin at pointer-down.
	Offset Point
}

// GeometryAt is the dragged shape's geometry with the pointer at p.
// Lines and ellipses follow the pointer's movement since pointer-down;
// rectangles keep the pointer-to-origin offset fixed.
func (d DragSession) GeometryAt(p Point) Geometry {
	switch d.Kind {
	case KindRect:
		g := d.StartGeometry
		g.X = p.X - d.Offset.X
		g.Y = p.Y - d.Offset.Y
		return g
	default:
		return d.StartGeometry.Translated(d.Kind, p.Sub(d.StartPointer))
	}
}

// Session is the selection and drag state of one editor. Transitions
// return a new value; a Session is never modified in place.
type Session struct {
	Selected string
	Drag     *DragSession
}

func (s Session) HasSelection() bool { return s.Selected != "" }
func (s Session) Dragging() bool     { return s.Drag != nil }

// Select makes id the selection and ends any drag.
func (s Session) Select(id string) Session {
	return Session{Selected: id}
}

// Deselect clears the selection and ends any drag.
func (s Session) Deselect() Session {
	return Session{}
}

// BeginDrag selects shape and starts a drag at the canvas point pointer.
func (s Session) BeginDrag(shape Shape, pointer Point) Session {
	d := &DragSession{
		ShapeID:       shape.ID,
		Kind:          shape.Kind,
		StartPointer:  pointer,
		StartGeometry: shape.Geometry,
	}
	if shape.Kind == KindRect {
		d.Offset = pointer.Sub(Point{X: shape.Geometry.X, Y: shape.Geometry.Y})
	}
	return Session{Selected: shape.ID, Drag: d}
}

func (s Session) EndDrag() Session {
	return Session{Selected: s.Selected}
}
