// Package config reads and writes lattice.toml, the per-project application
// configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up in the project root.
const FileName = "lattice.toml"

// Config represents the lattice.toml configuration file
type Config struct {
	App     AppConfig     `toml:"app"`
	Window  WindowConfig  `toml:"window"`
	Fonts   FontsConfig   `toml:"fonts"`
	Debug   DebugConfig   `toml:"debug"`
	Ticker  TickerConfig  `toml:"ticker"`
	Metrics MetricsConfig `toml:"metrics"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Title labels the window and the accessibility root. Defaults to Name.
	Title string `toml:"title"`
}

type WindowConfig struct {
	// Initial inner size in physical pixels. Zero keeps the host's size.
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type FontsConfig struct {
	// Default families handed to the layout engine when measuring text
	Default []string `toml:"default"`
}

type DebugConfig struct {
	// Outline the hovered node
	Wireframe bool `toml:"wireframe"`
	// Log level name; LATTICE_LOG_LEVEL wins when set
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

type TickerConfig struct {
	// Frame tick interval in milliseconds; negative disables ticks
	IntervalMS int `toml:"interval_ms"`
	// Per-subscriber tick buffer
	Capacity int `toml:"capacity"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a sensible default configuration
func Default() Config {
	return Config{
		App: AppConfig{
			Name:    "lattice",
			Version: "0.1.0",
		},
		Fonts: FontsConfig{
			Default: []string{"monospace"},
		},
		Debug: DebugConfig{
			LogLevel: "info",
		},
		Ticker: TickerConfig{
			IntervalMS: 16,
			Capacity:   5,
		},
	}
}

// TickInterval converts the configured interval.
func (c Config) TickInterval() time.Duration {
	if c.Ticker.IntervalMS < 0 {
		return -1
	}
	return time.Duration(c.Ticker.IntervalMS) * time.Millisecond
}

// Load loads the configuration from lattice.toml in dir.
// If the file doesn't exist, returns the default config
func Load(dir string) (Config, error) {
	config := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		config.applyDefaults()
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid %s: %w", path, err)
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults fills values derived from other fields.
func (c *Config) applyDefaults() {
	if c.App.Title == "" {
		c.App.Title = c.App.Name
	}
	if c.Ticker.Capacity <= 0 {
		c.Ticker.Capacity = 5
	}
}

// Validate rejects values no host can honour.
func (c Config) Validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("window size %dx%d is negative", c.Window.Width, c.Window.Height)
	}
	return nil
}

// Save writes the configuration to lattice.toml in dir
func Save(dir string, config Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// FindProjectRoot walks up from dir looking for lattice.toml, or go.mod as a
// fallback.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("not in a lattice project (no %s or go.mod found)", FileName)
		}
		dir = parent
	}
}
