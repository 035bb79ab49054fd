package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"os/exec"
	"runtime"
	"runtime/metrics"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
)

// benchReport is the JSON document a run produces. Durations are in
// milliseconds and sizes in bytes unless a field name says otherwise.
type benchReport struct {
	Schema         int               `json:"schema"`
	Host           hostInfo          `json:"host"`
	Config         configInfo        `json:"config"`
	RTT            rttStats          `json:"rtt_ms"`
	Trees          treeStats         `json:"trees"`
	Wire           wireStats         `json:"wire"`
	Runtime        runtimeStats      `json:"runtime"`
	FailedSessions uint64            `json:"failed_sessions"`
	Errors         map[string]uint64 `json:"errors,omitempty"`
}

type hostInfo struct {
	At     time.Time `json:"at"`
	Go     string    `json:"go"`
	OS     string    `json:"os"`
	Arch   string    `json:"arch"`
	CPUs   int       `json:"cpus"`
	Commit string    `json:"commit,omitempty"`
}

type configInfo struct {
	Profile      string  `json:"profile"`
	Sessions     int     `json:"sessions"`
	Duration     string  `json:"duration"`
	Rate         float64 `json:"trees_per_sec_per_session"`
	ListSize     int     `json:"list"`
	TokenBytes   int     `json:"token_bytes"`
	MaxProcs     int     `json:"max_procs,omitempty"`
	MemLimit     int64   `json:"mem_limit,omitempty"`
	ReplyTimeout string  `json:"reply_timeout"`
}

type rttStats struct {
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	P50     float64 `json:"p50"`
	P95     float64 `json:"p95"`
	P99     float64 `json:"p99"`
	Max     float64 `json:"max"`
}

type treeStats struct {
	Sent       uint64  `json:"sent"`
	Completed  uint64  `json:"completed"`
	Rate       float64 `json:"per_sec"`
	RatePerRun float64 `json:"per_sec_per_session"`
}

type wireStats struct {
	TreeBytes      uint64            `json:"tree_bytes"`
	PatchBytes     uint64            `json:"patch_bytes"`
	PatchFrames    uint64            `json:"patch_frames"`
	Patches        uint64            `json:"patches"`
	TreeBytesAvg   float64           `json:"tree_bytes_avg"`
	PatchBytesAvg  float64           `json:"patch_bytes_avg"`
	PatchesPerTree float64           `json:"patches_per_tree"`
	Ops            map[string]uint64 `json:"ops"`
}

type runtimeStats struct {
	AllocBytes   uint64  `json:"alloc_bytes"`
	AllocObjects uint64  `json:"alloc_objects"`
	HeapBytes    uint64  `json:"heap_bytes"`
	GCCycles     uint32  `json:"gc_cycles"`
	GCPause      float64 `json:"gc_pause_ms"`
	GCPauseAvg   float64 `json:"gc_pause_avg_ms"`
	GCCPU        float64 `json:"gc_cpu_fraction"`
}

// sample is the process state at the start or end of a run.
type sample struct {
	mem          runtime.MemStats
	cpuSeconds   float64
	gcCPUSeconds float64
	allocObjects uint64
}

var runtimeSamples = []string{
	"/cpu/classes/total:cpu-seconds",
	"/cpu/classes/gc/total:cpu-seconds",
	"/gc/heap/allocs:objects",
}

func takeSample() sample {
	var s sample
	runtime.GC()
	runtime.ReadMemStats(&s.mem)

	ms := make([]metrics.Sample, len(runtimeSamples))
	for i, name := range runtimeSamples {
		ms[i].Name = name
	}
	metrics.Read(ms)
	for _, m := range ms {
		switch m.Value.Kind() {
		case metrics.KindFloat64:
			if strings.HasPrefix(m.Name, "/cpu/classes/gc/") {
				s.gcCPUSeconds = m.Value.Float64()
			} else {
				s.cpuSeconds = m.Value.Float64()
			}
		case metrics.KindUint64:
			s.allocObjects = m.Value.Uint64()
		}
	}
	return s
}

func runtimeDelta(before, after sample) runtimeStats {
	out := runtimeStats{
		AllocBytes:   after.mem.TotalAlloc - before.mem.TotalAlloc,
		AllocObjects: after.allocObjects - before.allocObjects,
		HeapBytes:    after.mem.HeapAlloc,
		GCCycles:     after.mem.NumGC - before.mem.NumGC,
	}
	pause := time.Duration(after.mem.PauseTotalNs - before.mem.PauseTotalNs)
	out.GCPause = millis(pause)
	if out.GCCycles > 0 {
		out.GCPauseAvg = millis(pause / time.Duration(out.GCCycles))
	}
	if cpu := after.cpuSeconds - before.cpuSeconds; cpu > 0 {
		out.GCCPU = max(after.gcCPUSeconds-before.gcCPUSeconds, 0) / cpu
	}
	return out
}

// newReport assembles the report of a finished run. rtts must be sorted.
func newReport(cfg benchConfig, elapsed time.Duration, rtts []time.Duration,
	counters *benchCounters, errs *benchErrors, ops *patchOpCounts, before, after sample) benchReport {
	completed := counters.treesComplete.Load()
	sent := counters.treesSent.Load()
	rate := float64(completed) / math.Max(elapsed.Seconds(), 0.001)

	r := benchReport{
		Schema: 1,
		Host: hostInfo{
			At:     time.Now().UTC(),
			Go:     runtime.Version(),
			OS:     runtime.GOOS,
			Arch:   runtime.GOARCH,
			CPUs:   runtime.NumCPU(),
			Commit: gitCommit(),
		},
		Config: configInfo{
			Profile:      cfg.Profile,
			Sessions:     cfg.Clients,
			Duration:     cfg.Duration.String(),
			Rate:         cfg.RPS,
			ListSize:     cfg.ListSize,
			TokenBytes:   cfg.PayloadBytes,
			MaxProcs:     cfg.MaxProcs,
			MemLimit:     cfg.MemLimitBytes,
			ReplyTimeout: cfg.EventTimeout.String(),
		},
		Trees: treeStats{
			Sent:       sent,
			Completed:  completed,
			Rate:       rate,
			RatePerRun: rate / float64(cfg.Clients),
		},
		Runtime:        runtimeDelta(before, after),
		FailedSessions: errs.failedSessions.Load(),
		Errors:         errs.snapshot(),
	}

	if n := len(rtts); n > 0 {
		r.RTT = rttStats{
			Samples: n,
			Min:     millis(rtts[0]),
			P50:     millis(percentile(rtts, 0.50)),
			P95:     millis(percentile(rtts, 0.95)),
			P99:     millis(percentile(rtts, 0.99)),
			Max:     millis(rtts[n-1]),
		}
	}

	r.Wire = wireStats{
		TreeBytes:   counters.treeBytes.Load(),
		PatchBytes:  counters.patchBytes.Load(),
		PatchFrames: counters.patchFrames.Load(),
		Patches:     counters.patchesTotal.Load(),
		Ops:         ops.snapshot(),
	}
	r.Wire.TreeBytesAvg = ratio(r.Wire.TreeBytes, sent)
	r.Wire.PatchBytesAvg = ratio(r.Wire.PatchBytes, completed)
	r.Wire.PatchesPerTree = ratio(r.Wire.Patches, completed)
	return r
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// writeSummary prints the report as aligned sections.
func writeSummary(w io.Writer, r benchReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, format string, args ...any) {
		fmt.Fprintf(tw, "  %s\t"+format+"\n", append([]any{label}, args...)...)
	}

	fmt.Fprintf(tw, "vdiff-bench %s: %d sessions for %s\n", r.Config.Profile, r.Config.Sessions, r.Config.Duration)
	row("rate", "%.2f trees/s per session", r.Config.Rate)
	row("list", "%d keyed items, %d byte tokens", r.Config.ListSize, r.Config.TokenBytes)
	if r.Config.MaxProcs > 0 {
		row("GOMAXPROCS", "%d", r.Config.MaxProcs)
	}
	if r.Config.MemLimit > 0 {
		row("GOMEMLIMIT", "%.2f GiB", float64(r.Config.MemLimit)/float64(gib))
	}

	fmt.Fprintln(tw, "\nresults")
	row("trees", "%d of %d (%.1f/s, %.2f/s per session)", r.Trees.Completed, r.Trees.Sent, r.Trees.Rate, r.Trees.RatePerRun)
	row("failed sessions", "%d", r.FailedSessions)
	for _, name := range slices.Sorted(maps.Keys(r.Errors)) {
		row(name, "%d", r.Errors[name])
	}

	fmt.Fprintln(tw, "\nround trip (tree sent to patches applied)")
	if r.RTT.Samples == 0 {
		row("samples", "none")
	} else {
		for _, q := range []struct {
			name string
			v    float64
		}{{"min", r.RTT.Min}, {"p50", r.RTT.P50}, {"p95", r.RTT.P95}, {"p99", r.RTT.P99}, {"max", r.RTT.Max}} {
			row(q.name, "%.2f ms", q.v)
		}
	}

	fmt.Fprintln(tw, "\nwire (per tree)")
	row("tree frame", "%.1f bytes", r.Wire.TreeBytesAvg)
	row("patch frame", "%.1f bytes", r.Wire.PatchBytesAvg)
	row("patches", "%.2f", r.Wire.PatchesPerTree)

	fmt.Fprintln(tw, "\nruntime (whole process)")
	row("allocated", "%.2f MB in %d objects", float64(r.Runtime.AllocBytes)/(1<<20), r.Runtime.AllocObjects)
	row("heap", "%.2f MB", float64(r.Runtime.HeapBytes)/(1<<20))
	row("gc", "%d cycles, %.2f ms paused (%.2f ms avg), %.2f%% cpu",
		r.Runtime.GCCycles, r.Runtime.GCPause, r.Runtime.GCPauseAvg, r.Runtime.GCCPU*100)
	tw.Flush()
}

// writeJSON writes the report to path, or to stdout when path is "-".
func writeJSON(path string, r benchReport) error {
	out := io.Writer(os.Stdout)
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func gitCommit() string {
	for _, name := range []string{"VDIFF_GIT_COMMIT", "GIT_COMMIT"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// percentile returns the nearest-rank percentile of a sorted sample.
func percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	rank := int(math.Ceil(p * float64(n)))
	return sorted[min(max(rank, 1), n)-1]
}

func millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}
