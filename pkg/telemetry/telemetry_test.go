package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/livetree"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// recordedSpan captures what a span was told.
type recordedSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordedSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	cfg := trace.NewSpanStartConfig(opts...)
	s.SetAttributes(cfg.Attributes()...)
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer { return p.tracer }

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

// metricValue returns the value of the named metric whose labels match.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestMetricsObserveDiff(t *testing.T) {
	m := NewMetrics()
	patches := []vdom.Patch{
		{Op: vdom.AddAttributes},
		{Op: vdom.AddAttributes},
		{Op: vdom.RemoveNode},
	}
	m.ObserveDiff(time.Millisecond, patches)
	m.ObserveDiff(time.Millisecond, nil)

	reg := m.Registry()
	if got := metricValue(t, reg, "vdiff_diffs_total", nil); got != 2 {
		t.Errorf("diffs_total = %v, want 2", got)
	}
	if got := metricValue(t, reg, "vdiff_diff_duration_seconds", nil); got != 2 {
		t.Errorf("diff_duration_seconds count = %v, want 2", got)
	}
	if got := metricValue(t, reg, "vdiff_patches_total", map[string]string{"op": "AddAttributes"}); got != 2 {
		t.Errorf("patches_total{op=AddAttributes} = %v, want 2", got)
	}
	if got := metricValue(t, reg, "vdiff_patches_total", map[string]string{"op": "RemoveNode"}); got != 1 {
		t.Errorf("patches_total{op=RemoveNode} = %v, want 1", got)
	}
}

func TestMetricsSessionsAndErrors(t *testing.T) {
	m := NewMetrics(WithNamespace("test"), WithConstLabels(prometheus.Labels{"instance": "a"}))
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordApplyError(errors.New(errors.CodeTagMismatch))
	m.RecordApplyError(io.EOF)
	m.RecordApplyError(nil)
	m.RecordFrame("Patches", "out")
	m.RecordWebSocketError("read")

	reg := m.Registry()
	if got := metricValue(t, reg, "test_sessions_active", nil); got != 1 {
		t.Errorf("sessions_active = %v, want 1", got)
	}
	if got := metricValue(t, reg, "test_apply_errors_total", map[string]string{"code": "E101"}); got != 1 {
		t.Errorf("apply_errors_total{code=E101} = %v, want 1", got)
	}
	if got := metricValue(t, reg, "test_apply_errors_total", map[string]string{"code": "unknown"}); got != 1 {
		t.Errorf("apply_errors_total{code=unknown} = %v, want 1", got)
	}
	if got := metricValue(t, reg, "test_frames_total", map[string]string{"type": "Patches", "direction": "out"}); got != 1 {
		t.Errorf("frames_total = %v, want 1", got)
	}
	if got := metricValue(t, reg, "test_websocket_errors_total", map[string]string{"type": "read"}); got != 1 {
		t.Errorf("websocket_errors_total = %v, want 1", got)
	}
}

func TestMetricsNilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDiff(time.Second, []vdom.Patch{{Op: vdom.RemoveNode}})
	m.RecordApplyError(io.EOF)
	m.SessionOpened()
	m.SessionClosed()
	m.RecordFrame("Tree", "in")
	m.RecordWebSocketError("read")
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveDiff(time.Millisecond, nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "vdiff_diffs_total 1") {
		t.Errorf("exposition missing vdiff_diffs_total:\n%s", rec.Body.String())
	}
}

func TestMetricsSharedRegistryConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("registering the same collectors twice should panic")
		}
	}()
	NewMetrics(WithRegistry(reg))
}

func TestDifferDiff(t *testing.T) {
	tp := newRecordingProvider()
	m := NewMetrics()
	d := NewDiffer(WithTracerProvider(tp), WithMetrics(m))

	prev := vdom.Ul(vdom.Li(vdom.Key("a"), "a"), vdom.Li(vdom.Key("b"), "b"))
	next := vdom.Ul(vdom.Li(vdom.Key("b"), "b"), vdom.Li(vdom.Key("a"), "a"))
	got := d.Diff(context.Background(), prev, next)
	want := vdom.Diff(prev, next)
	if len(got) != len(want) {
		t.Fatalf("got %d patches, want %d", len(got), len(want))
	}

	if len(tp.tracer.spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(tp.tracer.spans))
	}
	span := tp.tracer.spans[0]
	if span.name != SpanDiff || !span.ended || span.status != codes.Ok {
		t.Errorf("span = %s ended=%v status=%v", span.name, span.ended, span.status)
	}
	if v := span.attrs["vdiff.prev_nodes"].AsInt64(); v != 5 {
		t.Errorf("vdiff.prev_nodes = %d, want 5", v)
	}
	if v := span.attrs["vdiff.patch_count"].AsInt64(); v != int64(len(want)) {
		t.Errorf("vdiff.patch_count = %d, want %d", v, len(want))
	}
	if v := span.attrs["vdiff.skip"].AsBool(); v {
		t.Error("vdiff.skip = true, want false")
	}
	if got := metricValue(t, m.Registry(), "vdiff_diffs_total", nil); got != 1 {
		t.Errorf("diffs_total = %v, want 1", got)
	}
}

func TestDifferDiffWithSkip(t *testing.T) {
	tp := newRecordingProvider()
	d := NewDiffer(WithTracerProvider(tp))
	prev := vdom.Div(vdom.P("a"), vdom.P("b"))
	next := vdom.Div(vdom.P("x"), vdom.P("y"))
	skip := vdom.NewSkipDiff(vdom.Const(false), vdom.NewSkipDiff(vdom.Slot(0)), vdom.NewSkipDiff(vdom.Const(false)))

	got := d.DiffWithSkip(context.Background(), prev, next, skip, vdom.Flags{true})
	want := vdom.DiffWithSkip(prev, next, skip, vdom.Flags{true})
	if len(got) != len(want) || len(got) != 1 {
		t.Fatalf("got %d patches, want %d (one for the unskipped child)", len(got), len(want))
	}
	if !tp.tracer.spans[0].attrs["vdiff.skip"].AsBool() {
		t.Error("vdiff.skip = false, want true")
	}
}

func TestDifferApply(t *testing.T) {
	tp := newRecordingProvider()
	m := NewMetrics()
	d := NewDiffer(WithTracerProvider(tp), WithMetrics(m))
	ctx := context.Background()

	prev := vdom.Div(vdom.P("a"))
	next := vdom.Div(vdom.P("b"), vdom.Span("c"))
	tree := livetree.Mount(prev)
	if err := d.Apply(ctx, tree, vdom.Diff(prev, next)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !vdom.Equal(tree.Snapshot(), next) {
		t.Error("live tree does not match next")
	}

	bad := []vdom.Patch{{Op: vdom.RemoveNode, Path: vdom.NewTreePath(7)}}
	err := d.Apply(ctx, tree, bad)
	if !errors.Is(err, errors.CodePathNotFound) {
		t.Fatalf("got %v, want E100", err)
	}
	span := tp.tracer.spans[len(tp.tracer.spans)-1]
	if span.name != SpanApply || span.status != codes.Error || len(span.errs) != 1 {
		t.Errorf("span = %s status=%v errs=%d", span.name, span.status, len(span.errs))
	}
	if v := span.attrs["vdiff.error_code"].AsString(); v != "E100" {
		t.Errorf("vdiff.error_code = %q, want E100", v)
	}
	if !span.attrs["vdiff.fatal"].AsBool() {
		t.Error("vdiff.fatal = false, want true")
	}
	if got := metricValue(t, m.Registry(), "vdiff_apply_errors_total", map[string]string{"code": "E100"}); got != 1 {
		t.Errorf("apply_errors_total{code=E100} = %v, want 1", got)
	}
}

func TestNewDifferDefaults(t *testing.T) {
	d := NewDiffer()
	if d.Metrics() != nil {
		t.Error("default Differ should have no metrics")
	}
	if got := d.Diff(context.Background(), vdom.P("a"), vdom.P("a")); len(got) != 0 {
		t.Errorf("got %d patches for equal trees, want 0", len(got))
	}
}
