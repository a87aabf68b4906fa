package state

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedKind = errors.New("state: unsupported shape kind")
	ErrShapeNotFound   = errors.New("state: shape not found")
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// ShapeKind is the tag of the Shape variant.
type ShapeKind string

const (
	KindLine    ShapeKind = "line"
	KindEllipse ShapeKind = "ellipse"
	KindRect    ShapeKind = "rect"
)

// ParseKind maps a host-supplied kind name onto a ShapeKind.
func ParseKind(name string) (ShapeKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "line":
		return KindLine, nil
	case "ellipse":
		return KindEllipse, nil
	case "rect", "rectangle":
		return KindRect, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

// Geometry holds the attributes of every kind; only the fields of the
// owning shape's kind are meaningful.
//
//	line:    X1,Y1 - X2,Y2
//	ellipse: CX,CY radii RX,RY
//	rect:    X,Y size Width,Height
type Geometry struct {
	X1     float64 `json:"x1,omitempty"`
	Y1     float64 `json:"y1,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	CX     float64 `json:"cx,omitempty"`
	CY     float64 `json:"cy,omitempty"`
	RX     float64 `json:"rx,omitempty"`
	RY     float64 `json:"ry,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Style values are kept verbatim as the host supplied them.
type Style struct {
	Stroke      string `json:"stroke"`
	Fill        string `json:"fill"`
	StrokeWidth string `json:"stroke_width"`
}

var DefaultStyle = Style{
	Stroke:      "#000000",
	Fill:        "#ffffff",
	StrokeWidth: "1",
}

// Shape is one drawable primitive on the canvas.
type Shape struct {
	ID       string    `json:"id"`
	Kind     ShapeKind `json:"kind"`
	Geometry Geometry  `json:"geometry"`
	Style    Style     `json:"style"`
}

// DefaultGeometry returns the fixed starting geometry for a kind.
func DefaultGeometry(kind ShapeKind) (Geometry, error) {
	switch kind {
	case KindLine:
		return Geometry{X1: 50, Y1: 50, X2: 150, Y2: 150}, nil
	case KindEllipse:
		return Geometry{CX: 100, CY: 100, RX: 50, RY: 30}, nil
	case KindRect:
		return Geometry{X: 50, Y: 50, Width: 100, Height: 80}, nil
	}
	return Geometry{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

// NewShape builds a default shape of the given kind with a fresh id.
func NewShape(kind ShapeKind) (Shape, error) {
	g, err := DefaultGeometry(kind)
	if err != nil {
		return Shape{}, err
	}
	return Shape{
		ID:       NewShapeID(),
		Kind:     kind,
		Geometry: g,
		Style:    DefaultStyle,
	}, nil
}

// Translated returns g moved by d, as interpreted for kind.
func (g Geometry) Translated(kind ShapeKind, d Point) Geometry {
	switch kind {
	case KindLine:
		g.X1 += d.X
		g.Y1 += d.Y
		g.X2 += d.X
		g.Y2 += d.Y
	case KindEllipse:
		g.CX += d.X
		g.CY += d.Y
	case KindRect:
		g.X += d.X
		g.Y += d.Y
	}
	return g
}
