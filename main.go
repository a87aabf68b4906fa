// Command vectorboard is a small vector drawing editor.
//
// Open the desktop editor:
//
//	vectorboard
//	vectorboard desktop --serve
//
// Host the browser editor for the local network:
//
//	vectorboard serve --config vectorboard.yaml --advertise
//
// Find editors advertised on the network:
//
//	vectorboard discover
//
// Render a saved scene without a UI:
//
//	vectorboard render scene.json --format png,svg --out exports
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"VectorBoard/internal/config"
	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	boardnet "VectorBoard/internal/net"
	"VectorBoard/internal/observability"
)

// Build information, set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	policy     string
	debug      bool
}

func buildRootCmd() *cobra.Command {
	g := &globalFlags{}
	desktop := buildDesktopCmd(g)

	rootCmd := &cobra.Command{
		Use:          "vectorboard",
		Short:        "VectorBoard - vector drawing editor with undo",
		Long:         "VectorBoard draws lines, ellipses and rectangles, restyles and moves them with undo,\nand exports the canvas as SVG, PNG, JPEG or PDF.",
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
		// With no subcommand the desktop editor opens.
		RunE: desktop.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&g.policy, "policy", "", "Undo policy: exact or legacy (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&g.debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().AddFlagSet(desktop.Flags())

	rootCmd.AddCommand(
		desktop,
		buildServeCmd(g),
		buildDiscoverCmd(g),
		buildRenderCmd(g),
	)
	return rootCmd
}

// load reads the config file, when one is given, and applies flag overrides.
func (g *globalFlags) load() (*config.Config, error) {
	cfg := config.Default()
	if strings.TrimSpace(g.configPath) != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if g.policy != "" {
		cfg.History.UndoPolicy = g.policy
	}
	if g.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and installs the logger it describes as the
// process default.
func (g *globalFlags) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, nil, err
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func canvasFrom(cfg *config.Config) export.Canvas {
	return export.Canvas{
		Width:      float64(cfg.Canvas.Width),
		Height:     float64(cfg.Canvas.Height),
		Background: cfg.Canvas.Background,
	}
}

// settingsFrom maps a validated config onto browser session settings.
func settingsFrom(cfg *config.Config) (boardnet.Settings, error) {
	policy, err := editor.ParsePolicy(cfg.History.UndoPolicy)
	if err != nil {
		return boardnet.Settings{}, err
	}
	renderer, err := export.ParseRenderer(cfg.Export.Renderer)
	if err != nil {
		return boardnet.Settings{}, err
	}
	return boardnet.Settings{
		Policy:      policy,
		Canvas:      canvasFrom(cfg),
		Renderer:    renderer,
		JPEGQuality: cfg.Export.JPEGQuality,
	}, nil
}
