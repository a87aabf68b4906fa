package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for VectorBoard.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

type HistoryConfig struct {
	// UndoPolicy is "exact" or "legacy".
	UndoPolicy string `yaml:"undo_policy"`
}

type ExportConfig struct {
	// Renderer is "svg" (rasterize the SVG serialization) or "direct".
	Renderer    string `yaml:"renderer"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	Dir         string `yaml:"dir"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Advertise   bool   `yaml:"advertise"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file, expanding environment variables, and fills
// in defaults for anything left unset.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Canvas.Width == 0 {
		cfg.Canvas.Width = 800
	}
	if cfg.Canvas.Height == 0 {
		cfg.Canvas.Height = 600
	}
	if cfg.Canvas.Background == "" {
		cfg.Canvas.Background = "#ffffff"
	}
	if cfg.History.UndoPolicy == "" {
		cfg.History.UndoPolicy = "exact"
	}
	if cfg.Export.Renderer == "" {
		cfg.Export.Renderer = "svg"
	}
	if cfg.Export.JPEGQuality == 0 {
		cfg.Export.JPEGQuality = 100
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8888"
	}
	if cfg.Server.ServiceName == "" {
		cfg.Server.ServiceName = "VectorBoard"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	switch c.History.UndoPolicy {
	case "exact", "legacy":
	default:
		return fmt.Errorf("history.undo_policy must be exact or legacy, got %q", c.History.UndoPolicy)
	}
	switch c.Export.Renderer {
	case "svg", "direct":
	default:
		return fmt.Errorf("export.renderer must be svg or direct, got %q", c.Export.Renderer)
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be within 1..100, got %d", c.Export.JPEGQuality)
	}
	return nil
}
