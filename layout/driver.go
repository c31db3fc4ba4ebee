package layout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/internal/metrics"
)

// DriverConfig wires a Driver to its collaborators. Only Engine is required.
type DriverConfig struct {
	Engine        Engine
	Accessibility Accessibility
	Observers     []Observer
	// Repaint is signaled after every recompute.
	Repaint func()
	Logger  zerolog.Logger
	Metrics *metrics.Recorder
}

// Driver runs layout recomputes for one tree.
type Driver struct {
	tree   *dom.Tree
	layout *Layout
	cfg    DriverConfig
}

// NewDriver returns a driver for tree.
func NewDriver(tree *dom.Tree, cfg DriverConfig) *Driver {
	return &Driver{tree: tree, layout: New(), cfg: cfg}
}

// Layout returns the current results.
func (d *Driver) Layout() *Layout {
	return d.layout
}

// Observe adds an observer.
func (d *Driver) Observe(o Observer) {
	d.cfg.Observers = append(d.cfg.Observers, o)
}

// Reset invalidates all cached areas; called on resize.
func (d *Driver) Reset() {
	d.layout.Reset()
}

// Recompute lays out the whole tree for viewport. Stale accessibility mappings are
// cleared first and the accessibility tree is rebuilt afterwards.
func (d *Driver) Recompute(viewport geom.Area, fonts []string, scale float32) {
	if d.cfg.Accessibility != nil {
		d.cfg.Accessibility.Clear()
	}

	for _, o := range d.cfg.Observers {
		o.StartedLayout(d.layout)
	}

	start := time.Now()
	d.cfg.Engine.Measure(d.tree, d.layout, viewport, fonts, scale)
	d.cfg.Metrics.LayoutDuration(context.Background(), time.Since(start))

	for _, o := range d.cfg.Observers {
		o.FinishedLayout(d.layout)
	}

	if d.cfg.Repaint != nil {
		d.cfg.Repaint()
	}

	if d.cfg.Accessibility != nil {
		d.cfg.Accessibility.Process(d.tree, d.layout)
	}

	d.cfg.Logger.Info().
		Int("nodes", d.layout.Len()).
		Int("layers", d.tree.Layers().Len()).
		Int("text_groups", d.tree.TextGroupCount()).
		Msg("processed layout")
}

// MeasureTextGroup re-measures a single text group without a full relayout.
// Unknown groups are ignored.
func (d *Driver) MeasureTextGroup(id uuid.UUID, fonts []string, scale float32) bool {
	if !d.cfg.Engine.MeasureTextGroup(d.tree, d.layout, id, fonts, scale) {
		d.cfg.Logger.Debug().Stringer("group", id).Msg("measure of unknown text group")
		return false
	}
	return true
}
