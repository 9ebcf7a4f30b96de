package session

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/smoke/telemetry"
)

// tracker feeds per-frame stats into the window collector, the CSV output
// and the run summary.
type tracker struct {
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool

	start   time.Time
	frameMS []float64
}

func newTracker(perfWindow, statsWindow int, output *telemetry.OutputManager, logStats bool) *tracker {
	return &tracker{
		perf:      telemetry.NewPerfCollector(perfWindow),
		collector: telemetry.NewCollector(statsWindow),
		output:    output,
		logStats:  logStats,
		start:     time.Now(),
	}
}

// observe records one finished frame and flushes a stats window when full.
func (t *tracker) observe(fs telemetry.FrameStats) {
	t.frameMS = append(t.frameMS, fs.StepMS)

	if err := t.output.WriteFrame(fs); err != nil {
		slog.Error("failed to write frame stats", "error", err)
	}

	ws, ok := t.collector.Add(fs)
	if !ok {
		return
	}
	t.flushWindow(ws)
}

func (t *tracker) flushWindow(ws telemetry.WindowStats) {
	perfStats := t.perf.Stats()
	if t.logStats {
		ws.LogStats()
		perfStats.LogStats()
	}
	if err := t.output.WriteWindow(ws); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := t.output.WritePerf(perfStats, ws.WindowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// finish flushes the partial window and logs and stores the run summary.
func (t *tracker) finish(mode string, simSize int) telemetry.ExperimentSummary {
	if ws := t.collector.Flush(); ws.Frames > 0 {
		t.flushWindow(ws)
	}
	summary := telemetry.Summarise(mode, simSize, time.Since(t.start), t.frameMS)
	summary.LogStats()
	if err := t.output.WriteExperiment(summary); err != nil {
		slog.Error("failed to write experiment summary", "error", err)
	}
	return summary
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
