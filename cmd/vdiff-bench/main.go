// Command vdiff-bench drives an in-process vdiff server with concurrent
// websocket sessions and reports patch round-trip latency, wire sizes and
// GC cost.
//
// Each client mounts a keyed list, then sends a mutated tree at a fixed
// rate. Every Patches frame is applied to a client-side mirror, which must
// match the tree that was sent.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/vdiff/pkg/server"
	"github.com/vango-dev/vdiff/pkg/telemetry"
)

const gib = int64(1024 * 1024 * 1024)

type profile struct {
	Name          string
	Clients       int
	Duration      time.Duration
	RPS           float64
	ListSize      int
	PayloadBytes  int
	MaxProcs      int
	MemLimitBytes int64
}

var profiles = map[string]profile{
	"fast": {
		Name:         "fast",
		Clients:      50,
		Duration:     10 * time.Second,
		RPS:          2,
		ListSize:     20,
		PayloadBytes: 24,
	},
	"standard": {
		Name:         "standard",
		Clients:      200,
		Duration:     30 * time.Second,
		RPS:          5,
		ListSize:     50,
		PayloadBytes: 24,
	},
	"stress": {
		Name:          "stress",
		Clients:       500,
		Duration:      60 * time.Second,
		RPS:           10,
		ListSize:      100,
		PayloadBytes:  24,
		MaxProcs:      4,
		MemLimitBytes: 2 * gib,
	},
}

type benchConfig struct {
	Profile       string
	Clients       int
	Duration      time.Duration
	RPS           float64
	ListSize      int
	PayloadBytes  int
	MaxProcs      int
	MemLimitBytes int64
	JSONOutput    string
	EventTimeout  time.Duration
}

func main() {
	log.SetFlags(0)

	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
	if cfg.MemLimitBytes > 0 {
		debug.SetMemoryLimit(cfg.MemLimitBytes)
	}
	debug.SetGCPercent(100)

	report, err := run(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	writeSummary(os.Stderr, report)
	if err := writeJSON(cfg.JSONOutput, report); err != nil {
		log.Fatalf("write json: %v", err)
	}
}

// run starts a server on a loopback port, runs cfg.Clients sessions
// against it for cfg.Duration and returns the report.
func run(ctx context.Context, cfg benchConfig) (benchReport, error) {
	srv := server.New(server.Config{
		Addr:        "127.0.0.1:0",
		Metrics:     telemetry.NewMetrics(),
		CheckOrigin: func(r *http.Request) bool { return true },
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return benchReport{}, fmt.Errorf("listen: %w", err)
	}

	serveCtx, stopServer := context.WithCancel(ctx)
	served := make(chan error, 1)
	go func() { served <- srv.Serve(serveCtx, ln) }()
	defer func() {
		stopServer()
		<-served
	}()

	baseURL := "ws://" + ln.Addr().String() + "/v1/sessions/"

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	samplesCh := make(chan time.Duration, sampleBuffer(cfg.Clients))
	var samples []time.Duration
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for rtt := range samplesCh {
			samples = append(samples, rtt)
		}
	}()

	var counters benchCounters
	var errCounts benchErrors
	var patchOps patchOpCounts

	before := takeSample()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Clients)
	for i := 0; i < cfg.Clients; i++ {
		c := &client{
			id:       i,
			url:      baseURL + "bench-" + strconv.Itoa(i) + "/ws",
			cfg:      cfg,
			counters: &counters,
			errs:     &errCounts,
			ops:      &patchOps,
			samples:  samplesCh,
		}
		go func() {
			defer wg.Done()
			if err := c.run(runCtx); err != nil {
				errCounts.failedSessions.Add(1)
			}
		}()
	}

	wg.Wait()
	close(samplesCh)
	<-collectorDone

	elapsed := time.Since(start)

	after := takeSample()

	slices.Sort(samples)
	return newReport(cfg, elapsed, samples, &counters, &errCounts, &patchOps, before, after), nil
}

func sampleBuffer(clients int) int {
	return max(clients*4, 1024)
}

func parseConfig(fs *flag.FlagSet, args []string) (benchConfig, error) {
	profileFlag := fs.String("profile", "standard", "profile: fast|standard|stress")
	clientsFlag := fs.Int("clients", -1, "number of concurrent websocket sessions")
	durationFlag := fs.String("duration", "", "benchmark duration, e.g. 30s")
	rpsFlag := fs.Float64("rps", -1, "target trees/sec per session")
	listFlag := fs.Int("list", -1, "keyed list size per session")
	payloadFlag := fs.Int("payload-bytes", -1, "bytes of token text per update")
	maxProcsFlag := fs.Int("max-procs", -1, "GOMAXPROCS cap (0 to leave unchanged)")
	memLimitFlag := fs.String("mem-limit", "", "GOMEMLIMIT (e.g. 2GiB)")
	jsonFlag := fs.String("json", "-", "JSON output path ('-' for stdout)")
	if err := fs.Parse(args); err != nil {
		return benchConfig{}, err
	}

	name := strings.ToLower(strings.TrimSpace(*profileFlag))
	if name == "" {
		name = "standard"
	}
	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	cfg := benchConfig{
		Profile:       base.Name,
		Clients:       base.Clients,
		Duration:      base.Duration,
		RPS:           base.RPS,
		ListSize:      base.ListSize,
		PayloadBytes:  base.PayloadBytes,
		MaxProcs:      base.MaxProcs,
		MemLimitBytes: base.MemLimitBytes,
		JSONOutput:    strings.TrimSpace(*jsonFlag),
	}

	if *clientsFlag != -1 {
		cfg.Clients = *clientsFlag
	}
	if *durationFlag != "" {
		d, err := time.ParseDuration(*durationFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -duration: %w", err)
		}
		cfg.Duration = d
	}
	if *rpsFlag != -1 {
		cfg.RPS = *rpsFlag
	}
	if *listFlag != -1 {
		cfg.ListSize = *listFlag
	}
	if *payloadFlag != -1 {
		cfg.PayloadBytes = *payloadFlag
	}
	if *maxProcsFlag != -1 {
		cfg.MaxProcs = *maxProcsFlag
	}
	if *memLimitFlag != "" {
		limit, err := parseBytes(*memLimitFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -mem-limit: %w", err)
		}
		cfg.MemLimitBytes = limit
	}
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "-"
	}

	switch {
	case cfg.Clients <= 0:
		return benchConfig{}, errors.New("-clients must be > 0")
	case cfg.Duration <= 0:
		return benchConfig{}, errors.New("-duration must be > 0")
	case cfg.RPS <= 0:
		return benchConfig{}, errors.New("-rps must be > 0")
	case cfg.ListSize < 0:
		return benchConfig{}, errors.New("-list must be >= 0")
	case cfg.PayloadBytes <= 0:
		return benchConfig{}, errors.New("-payload-bytes must be > 0")
	case cfg.MaxProcs < 0:
		return benchConfig{}, errors.New("-max-procs must be >= 0")
	case cfg.MemLimitBytes < 0:
		return benchConfig{}, errors.New("-mem-limit must be >= 0")
	}

	cfg.EventTimeout = eventTimeout(cfg.RPS)
	return cfg, nil
}

// eventTimeout is ten send periods, and never under two seconds.
func eventTimeout(rps float64) time.Duration {
	if rps <= 0 {
		return 0
	}
	period := time.Duration(float64(time.Second) / rps)
	return max(period*10, 2*time.Second)
}

// parseBytes parses sizes such as "512", "1.5GB" and "2GiB".
func parseBytes(input string) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, errors.New("empty size")
	}

	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, err
	}

	var multiplier float64
	switch suffix := strings.ToLower(strings.TrimSpace(s[i:])); suffix {
	case "", "b":
		multiplier = 1
	case "kb":
		multiplier = 1e3
	case "mb":
		multiplier = 1e6
	case "gb":
		multiplier = 1e9
	case "kib":
		multiplier = 1 << 10
	case "mib":
		multiplier = 1 << 20
	case "gib":
		multiplier = 1 << 30
	default:
		return 0, fmt.Errorf("unknown size suffix %q", suffix)
	}

	return int64(value*multiplier + 0.5), nil
}
