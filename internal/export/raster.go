package export

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"VectorBoard/internal/state"
)

// rasterSVG serializes doc, parses the SVG back and scan-converts it, the
// same path a browser takes when it loads an SVG into an image.
func rasterSVG(doc Document) (image.Image, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, normalized(doc)); err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(&buf, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	w, h := doc.Canvas.pixels()
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}

// normalized rewrites styles into values every SVG parser accepts: hex
// colors or none, and unitless stroke widths.
func normalized(doc Document) Document {
	out := Document{Canvas: doc.Canvas, Shapes: make([]state.Shape, len(doc.Shapes))}
	if c, ok := resolvePaint(doc.Canvas.Background); ok {
		out.Canvas.Background = hexOf(c)
	} else {
		out.Canvas.Background = "none"
	}
	for i, s := range doc.Shapes {
		s.Style = state.Style{
			Stroke:      normalizedPaint(s.Style.Stroke),
			Fill:        normalizedPaint(s.Style.Fill),
			StrokeWidth: num(s.StrokeWidthValue()),
		}
		if s.Kind == state.KindLine {
			s.Style.Fill = "none"
		}
		out.Shapes[i] = s
	}
	return out
}

func normalizedPaint(v string) string {
	c, ok := resolvePaint(v)
	if !ok {
		return "none"
	}
	return hexOf(c)
}

// rasterDirect draws doc onto a gg context without going through SVG.
func rasterDirect(doc Document) (image.Image, error) {
	w, h := doc.Canvas.pixels()
	dc := gg.NewContext(w, h)
	defer dc.Close()

	if bg, ok := resolvePaint(doc.Canvas.Background); ok {
		dc.ClearWithColor(gg.FromColor(bg))
	} else {
		dc.Clear()
	}

	for _, s := range doc.Shapes {
		if err := drawShape(dc, s); err != nil {
			return nil, fmt.Errorf("draw %s %s: %w", s.Kind, s.ID, err)
		}
	}
	return dc.Image(), nil
}

func drawShape(dc *gg.Context, s state.Shape) error {
	g := s.Geometry
	switch s.Kind {
	case state.KindLine:
		dc.DrawLine(g.X1, g.Y1, g.X2, g.Y2)
	case state.KindEllipse:
		dc.DrawEllipse(g.CX, g.CY, g.RX, g.RY)
	case state.KindRect:
		dc.DrawRectangle(g.X, g.Y, g.Width, g.Height)
	default:
		return fmt.Errorf("%w: %q", state.ErrUnsupportedKind, s.Kind)
	}

	if fill, ok := resolvePaint(s.Style.Fill); ok && s.Kind != state.KindLine {
		dc.SetColor(fill)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
	}
	stroke, ok := resolvePaint(s.Style.Stroke)
	width := s.StrokeWidthValue()
	if !ok || width <= 0 {
		dc.ClearPath()
		return nil
	}
	dc.SetColor(stroke)
	dc.SetLineWidth(width)
	return dc.Stroke()
}
