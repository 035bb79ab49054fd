package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/livetree"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

const defaultTracerName = "vdiff"

// Span names.
const (
	SpanDiff  = "vdiff.diff"
	SpanApply = "vdiff.apply"
)

// DifferConfig configures a Differ.
type DifferConfig struct {
	// TracerName is the name of the tracer (default: "vdiff").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Metrics receives diff and apply measurements. Optional.
	Metrics *Metrics
}

// DifferOption configures a Differ.
type DifferOption func(*DifferConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) DifferOption {
	return func(c *DifferConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) DifferOption {
	return func(c *DifferConfig) {
		c.TracerProvider = tp
	}
}

// WithMetrics records measurements into m.
func WithMetrics(m *Metrics) DifferOption {
	return func(c *DifferConfig) {
		c.Metrics = m
	}
}

// Differ runs diffs and patch applications inside OpenTelemetry spans and
// records them in Metrics.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given. Configure it in main() before serving:
//
//	otel.SetTracerProvider(tp)
//	d := telemetry.NewDiffer(telemetry.WithMetrics(m))
type Differ struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewDiffer creates a Differ.
func NewDiffer(opts ...DifferOption) *Differ {
	config := DifferConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Differ{
		tracer:  tp.Tracer(config.TracerName),
		metrics: config.Metrics,
	}
}

// Metrics returns the metrics the Differ records into, possibly nil.
func (d *Differ) Metrics() *Metrics {
	return d.metrics
}

// Diff is vdom.Diff inside a span.
func (d *Differ) Diff(ctx context.Context, prev, next *vdom.Node) []vdom.Patch {
	return d.DiffWithSkip(ctx, prev, next, nil, nil)
}

// DiffWithSkip is vdom.DiffWithSkip inside a span. A nil skip tree diffs
// normally.
func (d *Differ) DiffWithSkip(ctx context.Context, prev, next *vdom.Node, skip *vdom.SkipDiff, env vdom.Env) []vdom.Patch {
	_, span := d.tracer.Start(ctx, SpanDiff,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("vdiff.prev_nodes", nodeCount(prev)),
			attribute.Int("vdiff.next_nodes", nodeCount(next)),
			attribute.Bool("vdiff.skip", skip != nil),
		),
	)
	defer span.End()

	start := time.Now()
	var patches []vdom.Patch
	if skip != nil {
		patches = vdom.DiffWithSkip(prev, next, skip, env)
	} else {
		patches = vdom.Diff(prev, next)
	}
	d.metrics.ObserveDiff(time.Since(start), patches)

	span.SetAttributes(attribute.Int("vdiff.patch_count", len(patches)))
	span.SetStatus(codes.Ok, "")
	return patches
}

// Apply applies patches to a live tree inside a span. Failures are
// recorded on the span and counted by error code.
func (d *Differ) Apply(ctx context.Context, t *livetree.Tree, patches []vdom.Patch) error {
	_, span := d.tracer.Start(ctx, SpanApply,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("vdiff.patch_count", len(patches)),
			attribute.Int("vdiff.live_nodes", t.Len()),
		),
	)
	defer span.End()

	err := t.Apply(patches)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String("vdiff.error_code", errors.Code(err)),
			attribute.Bool("vdiff.fatal", errors.IsFatal(err)),
		)
		d.metrics.RecordApplyError(err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func nodeCount(n *vdom.Node) int {
	if n == nil {
		return 0
	}
	return n.NodeCount()
}
