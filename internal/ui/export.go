package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"VectorBoard/internal/export"
)

// writerSink saves an artifact through a fyne file writer and closes it.
type writerSink struct {
	w fyne.URIWriteCloser
}

func (s writerSink) Save(_ context.Context, a export.Artifact) error {
	_, werr := s.w.Write(a.Data)
	cerr := s.w.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

type exportController struct {
	win      fyne.Window
	board    *BoardWidget
	exporter *export.Exporter
	logger   *slog.Logger
	// dir is where the save dialog opens; empty leaves fyne's default.
	dir string
}

// Export asks for a destination and writes the canvas there. The canvas is
// captured when the dialog opens; encoding runs off the UI goroutine.
func (c *exportController) Export(format export.Format) {
	doc := c.board.ed.Snapshot()
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, c.win)
			return
		}
		if w == nil {
			return
		}
		c.board.status(fmt.Sprintf("Exporting %s...", format))
		go c.run(doc, format, writerSink{w: w})
	}, c.win)
	save.SetFileName(format.Filename())
	if loc := c.location(); loc != nil {
		save.SetLocation(loc)
	}
	save.Show()
}

func (c *exportController) run(doc export.Document, format export.Format, sink export.Sink) {
	a, err := c.exporter.ExportTo(context.Background(), doc, format, sink)
	fyne.Do(func() {
		if err != nil {
			c.logger.Error("export failed", "format", format, "error", err)
			dialog.ShowError(err, c.win)
			c.board.status("Export failed")
			return
		}
		c.board.status(fmt.Sprintf("Saved %s (%d bytes)", a.Filename, len(a.Data)))
	})
}

func (c *exportController) location() fyne.ListableURI {
	if c.dir == "" {
		return nil
	}
	abs, err := filepath.Abs(c.dir)
	if err != nil {
		return nil
	}
	loc, err := storage.ListerForURI(storage.NewFileURI(abs))
	if err != nil {
		c.logger.Debug("export dir not listable", "dir", abs, "error", err)
		return nil
	}
	return loc
}
