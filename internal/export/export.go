// Package export turns a snapshot of the canvas into SVG, PNG, JPEG or PDF
// bytes and hands them to a Sink.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"VectorBoard/internal/observability"
	"VectorBoard/internal/state"
)

var (
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	ErrUnknownRenderer   = errors.New("export: unknown renderer")
)

type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

func (f Format) Filename() string {
	switch f {
	case FormatJPEG:
		return "export.jpg"
	default:
		return "export." + string(f)
	}
}

func (f Format) MIME() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Canvas is the exported surface in canvas units.
type Canvas struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background"`
}

func (c Canvas) WithDefaults() Canvas {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Background == "" {
		c.Background = "#ffffff"
	}
	return c
}

func (c Canvas) pixels() (int, int) {
	return int(c.Width + 0.5), int(c.Height + 0.5)
}

// Document is a detached copy of the canvas, shapes bottom to top. Its JSON
// form matches the canvas and shapes of a browser state response.
type Document struct {
	Canvas Canvas        `json:"canvas"`
	Shapes []state.Shape `json:"shapes"`
}

type Artifact struct {
	Format   Format
	Filename string
	MIME     string
	Data     []byte
}

type Renderer string

const (
	// RendererSVG rasterizes the SVG serialization of the document.
	RendererSVG Renderer = "svg"
	// RendererDirect draws shapes straight onto a raster context.
	RendererDirect Renderer = "direct"
)

func ParseRenderer(name string) (Renderer, error) {
	switch Renderer(strings.ToLower(strings.TrimSpace(name))) {
	case RendererSVG, "":
		return RendererSVG, nil
	case RendererDirect:
		return RendererDirect, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}

type Options struct {
	Renderer Renderer
	// JPEGQuality is 1..100; zero means 100.
	JPEGQuality int
	Logger      *slog.Logger
	Metrics     *Metrics
}

type Exporter struct {
	renderer Renderer
	quality  int
	logger   *slog.Logger
	metrics  *Metrics
}

func New(opts Options) *Exporter {
	if opts.Renderer == "" {
		opts.Renderer = RendererSVG
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 100
	}
	return &Exporter{
		renderer: opts.Renderer,
		quality:  opts.JPEGQuality,
		logger:   observability.Component(opts.Logger, "export"),
		metrics:  opts.Metrics,
	}
}

// Export encodes doc in the given format.
func (x *Exporter) Export(ctx context.Context, doc Document, format Format) (Artifact, error) {
	start := time.Now()
	data, err := x.encode(ctx, doc, format)
	x.metrics.Observe(format, err, time.Since(start))
	if err != nil {
		x.logger.Warn("export failed", "format", format, "error", err)
		return Artifact{}, err
	}
	x.logger.Info("exported", "format", format, "shapes", len(doc.Shapes), "bytes", len(data))
	return Artifact{
		Format:   format,
		Filename: format.Filename(),
		MIME:     format.MIME(),
		Data:     data,
	}, nil
}

type Result struct {
	Artifact Artifact
	Err      error
}

// ExportAsync encodes doc on its own goroutine. The channel receives
// exactly one Result and is then closed.
func (x *Exporter) ExportAsync(ctx context.Context, doc Document, format Format) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		a, err := x.Export(ctx, doc, format)
		out <- Result{Artifact: a, Err: err}
	}()
	return out
}

// ExportTo exports and saves the artifact to sink.
func (x *Exporter) ExportTo(ctx context.Context, doc Document, format Format, sink Sink) (Artifact, error) {
	a, err := x.Export(ctx, doc, format)
	if err != nil {
		return Artifact{}, err
	}
	if err := sink.Save(ctx, a); err != nil {
		return Artifact{}, fmt.Errorf("save %s: %w", a.Filename, err)
	}
	return a, nil
}

func (x *Exporter) encode(ctx context.Context, doc Document, format Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc.Canvas = doc.Canvas.WithDefaults()

	var buf bytes.Buffer
	switch format {
	case FormatSVG:
		if err := WriteSVG(&buf, doc); err != nil {
			return nil, fmt.Errorf("export svg: %w", err)
		}
	case FormatPDF:
		if err := WritePDF(&buf, doc); err != nil {
			return nil, fmt.Errorf("export pdf: %w", err)
		}
	case FormatPNG:
		img, err := x.Rasterize(doc)
		if err != nil {
			return nil, fmt.Errorf("export png: %w", err)
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("export png: %w", err)
		}
	case FormatJPEG:
		img, err := x.Rasterize(doc)
		if err != nil {
			return nil, fmt.Errorf("export jpeg: %w", err)
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: x.quality}); err != nil {
			return nil, fmt.Errorf("export jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

// Rasterize renders doc to an image the size of its canvas with the
// configured renderer.
func (x *Exporter) Rasterize(doc Document) (image.Image, error) {
	doc.Canvas = doc.Canvas.WithDefaults()
	w, h := doc.Canvas.pixels()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("canvas %dx%d has no pixels", w, h)
	}
	switch x.renderer {
	case RendererDirect:
		return rasterDirect(doc)
	case RendererSVG:
		return rasterSVG(doc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, x.renderer)
}
