// Package logging builds the process logger: zerolog with a console writer, a
// profile-dependent default level and environment overrides.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "LATTICE_LOG_LEVEL"
	EnvLogTimestamp = "LATTICE_LOG_TIMESTAMP"
	EnvLogNoColor   = "LATTICE_LOG_NOCOLOR"
	EnvLogFile      = "LATTICE_LOG_FILE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config controls the logger built by New.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	// File, when set, receives the log instead of the fallback writer.
	File string
}

// DefaultConfig returns the settings for profile before environment overrides.
func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

// Configure builds the logger for profile with overrides from the environment and
// installs it as the global zerolog logger. fallback receives output when no log
// file is configured. The returned closer releases the log file, if any.
func Configure(profile Profile, app string, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	cfg := DefaultConfig(profile)
	ApplyEnv(&cfg, os.Getenv)
	logger, closer, err := New(app, cfg, fallback)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	log.Logger = logger
	return logger, closer, nil
}

// ApplyEnv overrides cfg from the LATTICE_LOG_* variables read through getenv.
// Unparseable values are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if lvl, ok := ParseLevel(getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if path := strings.TrimSpace(getenv(EnvLogFile)); path != "" {
		cfg.File = path
	}
}

// New builds a logger tagged with app.
func New(app string, cfg Config, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	out := fallback
	var closer io.Closer = nopCloser{}
	if out == nil {
		out = os.Stderr
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		out, closer = f, f
		// Files are read with tools that do not render escapes.
		cfg.NoColor = true
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
	}
	ctx := zerolog.New(output).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Str("app", app).Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a level name to a zerolog level. ok is false for empty or
// unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
