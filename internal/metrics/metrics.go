// Package metrics records frame-loop instruments through OpenTelemetry. Without a
// configured MeterProvider the global no-op provider makes every call free.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ScopeName is the instrumentation scope used for all instruments.
const ScopeName = "github.com/agiangrant/lattice"

// Recorder holds the runtime's instruments. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	frames    metric.Int64Counter
	polls     metric.Int64Counter
	batches   metric.Int64Counter
	commands  metric.Int64Counter
	layoutDur metric.Float64Histogram
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*Recorder, error) {
	r := &Recorder{}
	var err error

	if r.frames, err = meter.Int64Counter("lattice.frames.total",
		metric.WithDescription("Frames rendered"),
	); err != nil {
		return nil, err
	}
	if r.polls, err = meter.Int64Counter("lattice.poll.cycles",
		metric.WithDescription("Ready poll cycles of the virtual tree"),
	); err != nil {
		return nil, err
	}
	if r.batches, err = meter.Int64Counter("lattice.mutations.batches",
		metric.WithDescription("Non-empty mutation batches applied"),
	); err != nil {
		return nil, err
	}
	if r.commands, err = meter.Int64Counter("lattice.platform.commands",
		metric.WithDescription("Platform commands handled"),
	); err != nil {
		return nil, err
	}
	if r.layoutDur, err = meter.Float64Histogram("lattice.layout.duration",
		metric.WithDescription("Layout recompute duration"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	return r, nil
}

// Default builds a recorder on the global MeterProvider, falling back to no-op
// instruments.
func Default() *Recorder {
	r, err := New(otel.Meter(ScopeName))
	if err != nil {
		r, _ = New(noop.NewMeterProvider().Meter(ScopeName))
	}
	return r
}

// FrameRendered counts one rendered frame.
func (r *Recorder) FrameRendered(ctx context.Context) {
	if r == nil {
		return
	}
	r.frames.Add(ctx, 1)
}

// PollCycle counts one ready poll of the virtual tree.
func (r *Recorder) PollCycle(ctx context.Context) {
	if r == nil {
		return
	}
	r.polls.Add(ctx, 1)
}

// MutationsApplied counts one applied batch.
func (r *Recorder) MutationsApplied(ctx context.Context, relayout bool) {
	if r == nil {
		return
	}
	r.batches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("relayout", relayout)))
}

// CommandHandled counts one platform command by kind.
func (r *Recorder) CommandHandled(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.commands.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// LayoutDuration records one layout recompute.
func (r *Recorder) LayoutDuration(ctx context.Context, d time.Duration) {
	if r == nil {
		return
	}
	r.layoutDur.Record(ctx, float64(d.Microseconds())/1000)
}
