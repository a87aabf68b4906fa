package state

import (
	"sync"
)

// Store is the ordered set of shapes on the canvas. Order is paint order:
// the last shape is the most recently added one and is drawn on top.
type Store struct {
	shapes []Shape
	mu     sync.RWMutex
}

func NewStore() *Store {
	return &Store{shapes: make([]Shape, 0)}
}

// Append adds s on top and returns its index.
func (st *Store) Append(s Shape) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.shapes = append(st.shapes, s)
	return len(st.shapes) - 1
}

// Insert puts s at index i, clamped to the current bounds.
func (st *Store) Insert(i int, s Shape) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i > len(st.shapes) {
		i = len(st.shapes)
	}
	st.shapes = append(st.shapes, Shape{})
	copy(st.shapes[i+1:], st.shapes[i:])
	st.shapes[i] = s
	return i
}

// Remove deletes the shape with the given id and reports where it was.
func (st *Store) Remove(id string) (Shape, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.indexOf(id)
	if i < 0 {
		return Shape{}, -1, ErrShapeNotFound
	}
	removed := st.shapes[i]
	st.shapes = append(st.shapes[:i], st.shapes[i+1:]...)
	return removed, i, nil
}

func (st *Store) Get(id string) (Shape, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	i := st.indexOf(id)
	if i < 0 {
		return Shape{}, false
	}
	return st.shapes[i], true
}

// Update applies fn to the stored shape in place.
func (st *Store) Update(id string, fn func(*Shape)) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.indexOf(id)
	if i < 0 {
		return ErrShapeNotFound
	}
	fn(&st.shapes[i])
	return nil
}

// Last returns the most recently added shape still on the canvas.
func (st *Store) Last() (Shape, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if len(st.shapes) == 0 {
		return Shape{}, false
	}
	return st.shapes[len(st.shapes)-1], true
}

// Shapes returns a copy of the shapes in paint order.
func (st *Store) Shapes() []Shape {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Shape, len(st.shapes))
	copy(out, st.shapes)
	return out
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.shapes)
}

func (st *Store) indexOf(id string) int {
	for i := range st.shapes {
		if st.shapes[i].ID == id {
			return i
		}
	}
	return -1
}
