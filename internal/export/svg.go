package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"VectorBoard/internal/state"
)

const svgNS = "http://www.w3.org/2000/svg"

type svgDoc struct {
	XMLName  xml.Name `xml:"svg"`
	Xmlns    string   `xml:"xmlns,attr"`
	Width    string   `xml:"width,attr"`
	Height   string   `xml:"height,attr"`
	ViewBox  string   `xml:"viewBox,attr"`
	Elements []any
}

type svgPaint struct {
	Stroke      string `xml:"stroke,attr"`
	Fill        string `xml:"fill,attr"`
	StrokeWidth string `xml:"stroke-width,attr"`
}

type svgLine struct {
	XMLName xml.Name `xml:"line"`
	ID      string   `xml:"id,attr,omitempty"`
	X1      string   `xml:"x1,attr"`
	Y1      string   `xml:"y1,attr"`
	X2      string   `xml:"x2,attr"`
	Y2      string   `xml:"y2,attr"`
	svgPaint
}

type svgEllipse struct {
	XMLName xml.Name `xml:"ellipse"`
	ID      string   `xml:"id,attr,omitempty"`
	CX      string   `xml:"cx,attr"`
	CY      string   `xml:"cy,attr"`
	RX      string   `xml:"rx,attr"`
	RY      string   `xml:"ry,attr"`
	svgPaint
}

type svgRect struct {
	XMLName xml.Name `xml:"rect"`
	ID      string   `xml:"id,attr,omitempty"`
	X       string   `xml:"x,attr"`
	Y       string   `xml:"y,attr"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	svgPaint
}

type svgBackground struct {
	XMLName xml.Name `xml:"rect"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	Fill    string   `xml:"fill,attr"`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSVG serializes doc as a standalone SVG document. Style values are
// written as stored. A document with no shapes is still a complete SVG.
func WriteSVG(w io.Writer, doc Document) error {
	doc.Canvas = doc.Canvas.WithDefaults()
	root := svgDoc{
		Xmlns:   svgNS,
		Width:   num(doc.Canvas.Width),
		Height:  num(doc.Canvas.Height),
		ViewBox: "0 0 " + num(doc.Canvas.Width) + " " + num(doc.Canvas.Height),
	}
	root.Elements = append(root.Elements, svgBackground{
		Width:  num(doc.Canvas.Width),
		Height: num(doc.Canvas.Height),
		Fill:   doc.Canvas.Background,
	})
	for _, s := range doc.Shapes {
		el, err := svgElement(s)
		if err != nil {
			return err
		}
		root.Elements = append(root.Elements, el)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func svgElement(s state.Shape) (any, error) {
	paint := svgPaint{
		Stroke:      s.Style.Stroke,
		Fill:        s.Style.Fill,
		StrokeWidth: s.Style.StrokeWidth,
	}
	g := s.Geometry
	switch s.Kind {
	case state.KindLine:
		return svgLine{ID: s.ID, X1: num(g.X1), Y1: num(g.Y1), X2: num(g.X2), Y2: num(g.Y2), svgPaint: paint}, nil
	case state.KindEllipse:
		return svgEllipse{ID: s.ID, CX: num(g.CX), CY: num(g.CY), RX: num(g.RX), RY: num(g.RY), svgPaint: paint}, nil
	case state.KindRect:
		return svgRect{ID: s.ID, X: num(g.X), Y: num(g.Y), Width: num(g.Width), Height: num(g.Height), svgPaint: paint}, nil
	}
	return nil, fmt.Errorf("%w: %q", state.ErrUnsupportedKind, s.Kind)
}
