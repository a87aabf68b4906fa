package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"VectorBoard/internal/config"
	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	boardnet "VectorBoard/internal/net"
	"VectorBoard/internal/state"
	"VectorBoard/internal/ui"
)

// =============================================================================
// Desktop Command
// =============================================================================

func buildDesktopCmd(g *globalFlags) *cobra.Command {
	var (
		serve bool
		addr  string
	)
	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Open the desktop editor",
		Long: `Open the desktop editor window.

With --serve the browser editor is hosted as well and its link is shown in
the status bar, so other machines on the network can draw on their own
canvas.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			policy, err := editor.ParsePolicy(cfg.History.UndoPolicy)
			if err != nil {
				return err
			}
			renderer, err := export.ParseRenderer(cfg.Export.Renderer)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			opts := ui.AppOptions{
				Editor: editor.New(editor.Options{
					Policy: policy,
					Logger: logger,
					Canvas: canvasFrom(cfg),
				}),
				Exporter: export.New(export.Options{
					Renderer:    renderer,
					JPEGQuality: cfg.Export.JPEGQuality,
					Logger:      logger,
				}),
				Logger:    logger,
				ExportDir: cfg.Export.Dir,
			}

			if serve {
				settings, err := settingsFrom(cfg)
				if err != nil {
					return err
				}
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()
				srv := boardnet.NewServer(boardnet.Options{Addr: cfg.Server.Addr, Settings: settings, Logger: logger})
				go func() {
					if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("browser editor stopped", "error", err)
					}
				}()
				opts.ShareLink = shareLink(cfg.Server.Addr)
				logger.Info("browser editor enabled", "link", opts.ShareLink)
			}

			ui.RunApp(opts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&serve, "serve", false, "Also host the browser editor")
	cmd.Flags().StringVar(&addr, "addr", "", "Browser editor listen address (overrides config)")
	return cmd
}

// =============================================================================
// Serve Command
// =============================================================================

func buildServeCmd(g *globalFlags) *cobra.Command {
	var (
		addr      string
		advertise bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the browser editor",
		Long: `Host the browser editor over HTTP.

Every browser connection gets its own canvas and history. Edits to the
config file apply to connections opened afterwards. Prometheus metrics are
served on /metrics. Graceful shutdown is handled on SIGINT/SIGTERM.`,
		Example: `  # Serve with defaults on :8888
  vectorboard serve

  # Serve with a config file and announce on the local network
  vectorboard serve --config vectorboard.yaml --advertise`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			settings, err := settingsFrom(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := boardnet.NewServer(boardnet.Options{
				Addr:         cfg.Server.Addr,
				Settings:     settings,
				Logger:       logger,
				ServeMetrics: true,
				Metrics:      boardnet.NewMetrics(),
				Editor:       editor.NewMetrics(),
				Export:       export.NewMetrics(),
			})

			if g.configPath != "" {
				err := config.Watch(ctx, g.configPath, logger, func(next *config.Config) {
					s, err := settingsFrom(next)
					if err != nil {
						logger.Warn("config ignored", "error", err)
						return
					}
					srv.UpdateSettings(s)
				})
				if err != nil {
					logger.Warn("config watch unavailable", "path", g.configPath, "error", err)
				}
			}

			if advertise || cfg.Server.Advertise {
				port, err := boardnet.PortOf(cfg.Server.Addr)
				if err != nil {
					return fmt.Errorf("advertise: %w", err)
				}
				zone, err := boardnet.Advertise(cfg.Server.ServiceName, port, []string{"VectorBoard", version})
				if err != nil {
					return err
				}
				defer func() { _ = zone.Shutdown() }()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Browser editor: %s\n", shareLink(cfg.Server.Addr))
			err = srv.ListenAndServe(ctx)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the editor over mDNS")
	return cmd
}

func shareLink(addr string) string {
	port, err := boardnet.PortOf(addr)
	if err != nil {
		return addr
	}
	ip, err := boardnet.OutgoingIP()
	if err != nil {
		ip = "127.0.0.1"
	}
	return boardnet.ShareLink(ip, port)
}

// =============================================================================
// Discover Command
// =============================================================================

func buildDiscoverCmd(g *globalFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List browser editors advertised on the local network",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := g.setup(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			seen := make(map[string]bool)
			err := boardnet.Browse(cmd.Context(), timeout, func(p boardnet.Peer) {
				url := p.URL()
				if seen[url] {
					return
				}
				seen[url] = true
				fmt.Fprintf(out, "%s\t%s\n", p.Name, url)
			})
			if err != nil {
				return err
			}
			if len(seen) == 0 {
				fmt.Fprintln(out, "No editors found.")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "How long to listen for answers")
	return cmd
}

// =============================================================================
// Render Command
// =============================================================================

func buildRenderCmd(g *globalFlags) *cobra.Command {
	var (
		formats  []string
		out      string
		renderer string
	)
	cmd := &cobra.Command{
		Use:   "render <scene.json>",
		Short: "Export a saved scene without opening an editor",
		Long: `Export a scene file to one or more formats.

The scene is JSON with "canvas" and "shapes", the same shape a browser
editor's state response has. A scene without a canvas is sized to fit its
shapes, and never smaller than the configured canvas.`,
		Example: `  vectorboard render scene.json --format png,svg,pdf --out exports`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if renderer != "" {
				cfg.Export.Renderer = renderer
			}
			if out != "" {
				cfg.Export.Dir = out
			}
			r, err := export.ParseRenderer(cfg.Export.Renderer)
			if err != nil {
				return err
			}

			doc, err := readScene(args[0], canvasFrom(cfg))
			if err != nil {
				return err
			}
			exporter := export.New(export.Options{Renderer: r, JPEGQuality: cfg.Export.JPEGQuality, Logger: logger})
			sink := export.DirSink{Dir: cfg.Export.Dir}
			for _, name := range formats {
				format, err := export.ParseFormat(name)
				if err != nil {
					return err
				}
				a, err := exporter.ExportTo(cmd.Context(), doc, format, sink)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", a.Filename, len(a.Data))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"png"}, "Formats to write: svg, png, jpeg, pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&renderer, "renderer", "", "Raster renderer: svg or direct (overrides config)")
	return cmd
}

// fitCanvas sizes a canvas to cover every shape, never smaller than
// fallback.
func fitCanvas(shapes []state.Shape, fallback export.Canvas) (float64, float64) {
	st := state.NewStore()
	for _, s := range shapes {
		st.Append(s)
	}
	w, h := fallback.Width, fallback.Height
	if r, ok := st.Extent(); ok {
		w = math.Max(w, math.Ceil(r.X+r.Width))
		h = math.Max(h, math.Ceil(r.Y+r.Height))
	}
	return w, h
}

func readScene(path string, fallback export.Canvas) (export.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return export.Document{}, fmt.Errorf("read scene: %w", err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return export.Document{}, fmt.Errorf("parse scene: %w", err)
	}
	if doc.Canvas.Width <= 0 || doc.Canvas.Height <= 0 {
		doc.Canvas.Width, doc.Canvas.Height = fitCanvas(doc.Shapes, fallback)
	}
	if strings.TrimSpace(doc.Canvas.Background) == "" {
		doc.Canvas.Background = fallback.Background
	}
	return doc, nil
}
