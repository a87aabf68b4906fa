package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
)

const scene = `{
  "canvas": {"width": 320, "height": 240},
  "shapes": [
    {"id": "a", "kind": "rect", "geometry": {"x": 10, "y": 10, "width": 100, "height": 80},
     "style": {"stroke": "#000000", "fill": "#ff0000", "stroke_width": "2"}}
  ]
}`

func TestBuildRootCmd(t *testing.T) {
	root := buildRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"desktop", "serve", "discover", "render"} {
		assert.True(t, names[want], "missing %s", want)
	}
	assert.NotNil(t, root.Flags().Lookup("serve"))
	assert.NotNil(t, root.PersistentFlags().Lookup("policy"))
}

func TestRenderWritesFormats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(scene), 0o644))
	outDir := filepath.Join(dir, "out")

	root := buildRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"render", path, "--format", "svg,png,pdf", "--out", outDir})
	require.NoError(t, root.Execute())

	for _, name := range []string{"export.svg", "export.png", "export.pdf"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
		assert.Contains(t, out.String(), "wrote "+name)
	}
	svg, err := os.ReadFile(filepath.Join(outDir, "export.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), `width="320"`)
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(scene), 0o644))

	root := buildRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"render", path, "--format", "gif", "--out", dir})
	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestReadSceneFallsBackToConfigCanvas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shapes": []}`), 0o644))

	doc, err := readScene(path, export.Canvas{Width: 640, Height: 480, Background: "#eeeeee"})
	require.NoError(t, err)
	assert.Equal(t, export.Canvas{Width: 640, Height: 480, Background: "#eeeeee"}, doc.Canvas)

	_, err = readScene(filepath.Join(t.TempDir(), "missing.json"), export.Canvas{})
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectorboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  undo_policy: exact\nexport:\n  renderer: direct\n"), 0o644))

	g := &globalFlags{configPath: path, policy: "legacy", debug: true}
	cfg, err := g.load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.History.UndoPolicy)
	assert.Equal(t, "debug", cfg.Logging.Level)

	settings, err := settingsFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, editor.PolicyLegacy, settings.Policy)
	assert.Equal(t, export.RendererDirect, settings.Renderer)
	assert.Equal(t, 800.0, settings.Canvas.Width)

	_, err = (&globalFlags{policy: "sometimes"}).load()
	assert.Error(t, err)
}

func TestReadSceneFitsShapesOutsideConfigCanvas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	body := `{"shapes": [{"id": "a", "kind": "rect", "geometry": {"x": 700, "y": 20, "width": 300, "height": 50},
	  "style": {"stroke": "#000000", "fill": "#ffffff", "stroke_width": "2"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	doc, err := readScene(path, export.Canvas{Width: 800, Height: 600, Background: "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, 1001.0, doc.Canvas.Width)
	assert.Equal(t, 600.0, doc.Canvas.Height)
}
