package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	"VectorBoard/internal/observability"
)

type AppOptions struct {
	Title    string
	Editor   *editor.Editor
	Exporter *export.Exporter
	Logger   *slog.Logger
	// ShareLink, when set, is shown in the status bar so other machines can
	// open the browser editor.
	ShareLink string
	// ExportDir is where export dialogs start.
	ExportDir string
}

// Window is the assembled desktop editor.
type Window struct {
	fyne.Window
	Board   *BoardWidget
	Toolbar *Toolbar
	Status  *widget.Label
}

// NewWindow builds the editor window without showing it.
func NewWindow(a fyne.App, opts AppOptions) *Window {
	if opts.Title == "" {
		opts.Title = "VectorBoard"
	}
	if opts.Editor == nil {
		opts.Editor = editor.New(editor.Options{Logger: opts.Logger})
	}
	if opts.Exporter == nil {
		opts.Exporter = export.New(export.Options{Logger: opts.Logger})
	}
	logger := observability.Component(opts.Logger, "ui")

	w := a.NewWindow(opts.Title)
	w.Resize(fyne.NewSize(1024, 768))

	board := NewBoardWidget(opts.Editor)
	status := widget.NewLabel("Ready")
	if opts.ShareLink != "" {
		status.SetText(fmt.Sprintf("Ready | browser editor: %s", opts.ShareLink))
	}
	board.OnStatus = status.SetText

	exports := &exportController{win: w, board: board, exporter: opts.Exporter, logger: logger, dir: opts.ExportDir}
	toolbar := NewToolbar(board)
	toolbar.OnExport = exports.Export

	w.SetContent(container.NewBorder(toolbar.Build(), status, nil, nil, board))
	installShortcuts(w.Canvas(), board)

	return &Window{Window: w, Board: board, Toolbar: toolbar, Status: status}
}

// installShortcuts binds undo, redo and delete. A registered shortcut is
// consumed by the canvas, so the chord never reaches focused widgets.
func installShortcuts(c fyne.Canvas, board *BoardWidget) {
	ed := board.ed
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { ed.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { ed.Redo() })
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			ed.DeleteSelected()
		case fyne.KeyEscape:
			board.finishGesture()
		}
	})
}

// RunApp opens the desktop editor and blocks until it is closed.
func RunApp(opts AppOptions) {
	a := app.NewWithID("io.vectorboard.desktop")
	w := NewWindow(a, opts)
	w.ShowAndRun()
}
