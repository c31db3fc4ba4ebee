package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/agiangrant/lattice/config"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/host/term"
	"github.com/agiangrant/lattice/internal/logging"
	"github.com/agiangrant/lattice/internal/metrics"
	"github.com/agiangrant/lattice/plugins"
)

// screenFactory is overridden in tests.
var screenFactory = tcell.NewScreen

// Run implements the 'lattice run' command
func Run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	dir := fs.String("dir", ".", "Project directory")
	wireframe := fs.Bool("wireframe", false, "Outline the hovered node")
	fs.Parse(args)

	cfg, err := loadProjectConfig(*dir)
	if err != nil {
		return err
	}
	if *wireframe {
		cfg.Debug.Wireframe = true
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := screenFactory()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	return runDemo(ctx, screen, cfg, logger)
}

// runDemo hosts the demo app on screen until it exits.
func runDemo(ctx context.Context, screen tcell.Screen, cfg config.Config, logger zerolog.Logger) error {
	var (
		reader   *sdkmetric.ManualReader
		recorder *metrics.Recorder
	)
	if cfg.Metrics.Enabled {
		reader = sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer provider.Shutdown(context.Background())

		var err error
		if recorder, err = metrics.New(provider.Meter(metrics.ScopeName)); err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	demo := NewDemo(cfg.App.Title, logger)
	pl := []plugins.Plugin{demo.Plugin(ctx)}
	if logger.GetLevel() <= zerolog.TraceLevel {
		pl = append(pl, plugins.Logger(logger))
	}

	hc := hostConfig(cfg)
	hc.VirtualTree = demo.Tree()
	hc.Plugins = pl
	hc.Logger = logger
	hc.Metrics = recorder
	host, err := term.New(screen, hc)
	if err != nil {
		return err
	}

	if err := host.Run(ctx); err != nil {
		return err
	}

	if reader != nil {
		logMetrics(ctx, reader, logger)
	}
	return nil
}

// hostConfig maps the project settings onto the terminal host.
func hostConfig(cfg config.Config) term.Config {
	return term.Config{
		Title:          cfg.App.Title,
		DefaultFonts:   cfg.Fonts.Default,
		TickInterval:   cfg.TickInterval(),
		TickerCapacity: cfg.Ticker.Capacity,
		InitialSize:    geom.Size{Width: float32(cfg.Window.Width), Height: float32(cfg.Window.Height)},
		Wireframe:      cfg.Debug.Wireframe,
	}
}

func loadProjectConfig(dir string) (config.Config, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		// Running outside a project is fine; use the defaults.
		root = dir
	}
	return config.Load(root)
}

// newLogger builds the run logger. The terminal belongs to the UI, so without a
// log file the output is discarded.
func newLogger(cfg config.Config) (zerolog.Logger, io.Closer, error) {
	lcfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.Debug.LogLevel); ok {
		lcfg.Level = lvl
	}
	lcfg.File = cfg.Debug.LogFile
	logging.ApplyEnv(&lcfg, os.Getenv)
	return logging.New(cfg.App.Name, lcfg, io.Discard)
}

func logMetrics(ctx context.Context, reader *sdkmetric.ManualReader, logger zerolog.Logger) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.WithoutCancel(ctx), &rm); err != nil {
		if !errors.Is(err, sdkmetric.ErrReaderShutdown) {
			logger.Warn().Err(err).Msg("collect metrics")
		}
		return
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				var total int64
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				logger.Info().Str("metric", m.Name).Int64("total", total).Msg("metrics summary")
			}
		}
	}
}
