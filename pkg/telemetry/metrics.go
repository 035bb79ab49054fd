package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vdiff").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for diff duration.
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry, so
	// several Metrics can coexist in one process.
	Registry *prometheus.Registry
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the diff duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vdiff",
		// Diffs are usually sub-millisecond.
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	}
}

// Metrics holds the collectors for diffing, patch application and
// sessions. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	diffsTotal      prometheus.Counter
	diffDuration    prometheus.Histogram
	patchesTotal    *prometheus.CounterVec
	applyErrors     *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	framesTotal     *prometheus.CounterVec
	websocketErrors *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - vdiff_diffs_total: Counter of computed diffs
//   - vdiff_diff_duration_seconds: Histogram of diff duration
//   - vdiff_patches_total: Counter of emitted patches by op
//   - vdiff_apply_errors_total: Counter of failed applications by error code
//   - vdiff_sessions_active: Gauge of connected websocket sessions
//   - vdiff_frames_total: Counter of websocket frames by type and direction
//   - vdiff_websocket_errors_total: Counter of websocket errors by type
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		diffsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diffs_total",
			Help:        "Total number of diffs computed",
			ConstLabels: config.ConstLabels,
		}),

		diffDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diff_duration_seconds",
			Help:        "Diff computation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		patchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of patches emitted by op",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		applyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "apply_errors_total",
			Help:        "Total number of failed patch applications by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_active",
			Help:        "Number of connected websocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total websocket frames by type and direction",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "direction"}),

		websocketErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total websocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDiff records one diff and the patches it produced.
func (m *Metrics) ObserveDiff(d time.Duration, patches []vdom.Patch) {
	if m == nil {
		return
	}
	m.diffsTotal.Inc()
	m.diffDuration.Observe(d.Seconds())
	for _, p := range patches {
		m.patchesTotal.WithLabelValues(p.Op.String()).Inc()
	}
}

// RecordApplyError records a failed patch application under its error
// code. Errors without a code count as "unknown".
func (m *Metrics) RecordApplyError(err error) {
	if m == nil || err == nil {
		return
	}
	code := errors.Code(err)
	if code == "" {
		code = "unknown"
	}
	m.applyErrors.WithLabelValues(code).Inc()
}

// SessionOpened records a connected session.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessionsActive.Inc()
	}
}

// SessionClosed records a disconnected session.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessionsActive.Dec()
	}
}

// RecordFrame records a websocket frame. direction is "in" or "out".
func (m *Metrics) RecordFrame(frameType, direction string) {
	if m != nil {
		m.framesTotal.WithLabelValues(frameType, direction).Inc()
	}
}

// RecordWebSocketError records a websocket error by type.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m != nil {
		m.websocketErrors.WithLabelValues(errorType).Inc()
	}
}
