package ui

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"VectorBoard/internal/export"
	"VectorBoard/internal/state"
)

const (
	paintStroke = "Stroke"
	paintFill   = "Fill"
)

// palette is the swatch set; values are stored on shapes verbatim.
var palette = []string{"#000000", "#ffffff", "#ff0000", "#00ff00", "#0000ff", "#ffff00", "none"}

type colorSwatch struct {
	widget.BaseWidget
	Value    string
	OnTapped func(string)
}

func newColorSwatch(value string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Value: value, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(paintColor(s.Value))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	objects := []fyne.CanvasObject{rect, border}
	if s.Value == "none" {
		slash := canvas.NewLine(color.NRGBA{R: 200, A: 255})
		slash.StrokeWidth = 2
		objects = append(objects, slash)
	}
	return widget.NewSimpleRenderer(container.NewStack(objects...))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Value)
	}
}

// Toolbar holds the editing controls bound to one board.
type Toolbar struct {
	board  *BoardWidget
	target *widget.RadioGroup
	width  *widget.Slider

	// OnExport is called with the chosen format.
	OnExport func(export.Format)
}

func NewToolbar(board *BoardWidget) *Toolbar {
	return &Toolbar{board: board}
}

func (t *Toolbar) addShape(kind state.ShapeKind) {
	if _, err := t.board.ed.AddShape(string(kind)); err != nil {
		t.board.status(err.Error())
	}
}

// applyColor sets the stroke or the fill of the selection, whichever the
// target switch names.
func (t *Toolbar) applyColor(value string) {
	if t.target != nil && t.target.Selected == paintFill {
		t.board.ed.SetFill(value)
		return
	}
	t.board.ed.SetStroke(value)
}

func (t *Toolbar) applyWidth(v float64) {
	t.board.ed.SetStrokeWidth(strconv.FormatFloat(v, 'f', -1, 64))
}

func (t *Toolbar) export(f export.Format) {
	if t.OnExport != nil {
		t.OnExport(f)
	}
}

func (t *Toolbar) Build() fyne.CanvasObject {
	ed := t.board.ed

	shapes := container.NewHBox(
		widget.NewButton("Line", func() { t.addShape(state.KindLine) }),
		widget.NewButton("Ellipse", func() { t.addShape(state.KindEllipse) }),
		widget.NewButton("Rectangle", func() { t.addShape(state.KindRect) }),
	)

	edit := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { ed.Undo() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { ed.Redo() }),
		widget.NewToolbarAction(theme.DeleteIcon(), ed.DeleteSelected),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomFitIcon(), t.board.ResetView),
	)

	t.target = widget.NewRadioGroup([]string{paintStroke, paintFill}, nil)
	t.target.Horizontal = true
	t.target.SetSelected(paintStroke)

	swatches := container.NewHBox()
	for _, v := range palette {
		swatches.Add(newColorSwatch(v, t.applyColor))
	}

	t.width = widget.NewSlider(1, 20)
	t.width.SetValue(1)
	t.width.OnChangeEnded = t.applyWidth
	widthBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 35)), t.width)

	exportButtons := container.NewHBox()
	for _, f := range []export.Format{export.FormatSVG, export.FormatPNG, export.FormatJPEG, export.FormatPDF} {
		exportButtons.Add(widget.NewButtonWithIcon(string(f), theme.DocumentSaveIcon(), func() { t.export(f) }))
	}

	return container.NewHBox(
		shapes,
		widget.NewSeparator(),
		edit,
		widget.NewSeparator(),
		t.target,
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Width:"),
		widthBox,
		layout.NewSpacer(),
		exportButtons,
	)
}
