package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	want := Default()
	want.App.Title = want.App.Name
	assert.Equal(t, want, cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `
[app]
name = "counter"

[window]
width = 120
height = 40

[debug]
wireframe = true

[ticker]
interval_ms = -1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "counter", cfg.App.Name)
	assert.Equal(t, "counter", cfg.App.Title, "title falls back to name")
	assert.Equal(t, "0.1.0", cfg.App.Version, "unset keys keep defaults")
	assert.Equal(t, 120, cfg.Window.Width)
	assert.True(t, cfg.Debug.Wireframe)
	assert.Equal(t, time.Duration(-1), cfg.TickInterval())
	assert.Equal(t, 5, cfg.Ticker.Capacity)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "[app\nname = 1"},
		{"wrong type", "[window]\nwidth = \"wide\""},
		{"negative size", "[window]\nwidth = -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.data), 0o644))
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.App.Name = "demo"
	cfg.App.Title = "Demo"
	cfg.Fonts.Default = []string{"Inter", "monospace"}
	cfg.Metrics.Enabled = true

	require.NoError(t, Save(dir, cfg))
	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestTickInterval(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval())
	cfg.Ticker.IntervalMS = 0
	assert.Zero(t, cfg.TickInterval())
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), nil, 0o644))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
