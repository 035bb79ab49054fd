package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/telemetry"
)

// Config holds the server configuration. Zero fields take the values of
// DefaultConfig.
type Config struct {
	// Addr is the address to listen on.
	// Default: ":7070".
	Addr string

	// ReadTimeout is the maximum time to wait for a message from a client,
	// and for an HTTP request body.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// HeartbeatInterval is the time between websocket pings. It must be
	// shorter than ReadTimeout for idle sessions to stay open.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageBytes limits incoming websocket messages and request bodies.
	// Default: 4MB.
	MaxMessageBytes int64

	// Store holds the last tree of each session.
	// Default: a new snapshot.MemoryStore.
	Store snapshot.Store

	// Metrics receives server and diff metrics. Nil disables metrics and
	// the metrics endpoint.
	Metrics *telemetry.Metrics

	// MetricsPath is where Metrics is served.
	// Default: "/metrics".
	MetricsPath string

	// Differ computes patch scripts.
	// Default: telemetry.NewDiffer(telemetry.WithMetrics(Metrics)).
	Differ *telemetry.Differ

	// CheckOrigin validates the Origin header of websocket upgrades.
	// Default: same-origin check.
	CheckOrigin func(r *http.Request) bool

	// Logger is the server logger.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:              ":7070",
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageBytes:   4 << 20,
		MetricsPath:       "/metrics",
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = d.MaxMessageBytes
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	if c.Store == nil {
		c.Store = snapshot.NewMemoryStore()
	}
	if c.Differ == nil {
		c.Differ = telemetry.NewDiffer(telemetry.WithMetrics(c.Metrics))
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
