package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"VectorBoard/internal/state"
)

// WritePDF draws doc on a single page the size of the canvas, one point
// per canvas unit.
func WritePDF(w io.Writer, doc Document) error {
	doc.Canvas = doc.Canvas.WithDefaults()
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: doc.Canvas.Width, Ht: doc.Canvas.Height},
	})
	p.SetAutoPageBreak(false, 0)
	p.SetMargins(0, 0, 0)
	p.AddPage()

	if bg, ok := resolvePaint(doc.Canvas.Background); ok {
		p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		p.Rect(0, 0, doc.Canvas.Width, doc.Canvas.Height, "F")
	}

	for _, s := range doc.Shapes {
		if err := pdfShape(p, s); err != nil {
			return err
		}
	}
	if err := p.Error(); err != nil {
		return err
	}
	return p.Output(w)
}

func pdfShape(p *gofpdf.Fpdf, s state.Shape) error {
	style := ""
	if fill, ok := resolvePaint(s.Style.Fill); ok && s.Kind != state.KindLine {
		p.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		style += "F"
	}
	if stroke, ok := resolvePaint(s.Style.Stroke); ok && s.StrokeWidthValue() > 0 {
		p.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
		p.SetLineWidth(s.StrokeWidthValue())
		style += "D"
	}
	if style == "" {
		return nil
	}

	g := s.Geometry
	switch s.Kind {
	case state.KindLine:
		if style == "D" {
			p.Line(g.X1, g.Y1, g.X2, g.Y2)
		}
	case state.KindEllipse:
		p.Ellipse(g.CX, g.CY, g.RX, g.RY, 0, style)
	case state.KindRect:
		p.Rect(g.X, g.Y, g.Width, g.Height, style)
	default:
		return fmt.Errorf("%w: %q", state.ErrUnsupportedKind, s.Kind)
	}
	return nil
}
