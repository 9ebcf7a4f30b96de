package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameStats describes one simulated, recorded or replayed frame.
type FrameStats struct {
	Frame         int     `csv:"frame"`
	TotalDensity  float64 `csv:"total_density"`
	MaxDensity    float64 `csv:"max_density"`
	ChangedBlocks int     `csv:"changed_blocks"`
	PayloadBytes  int64   `csv:"payload_bytes"` // Bytes written or read for this frame
	StepMS        float64 `csv:"step_ms"`
}

// DensityStats returns the sum and maximum of a density grid.
func DensityStats(grid []float32) (total, peak float64) {
	for _, v := range grid {
		total += float64(v)
		if float64(v) > peak {
			peak = float64(v)
		}
	}
	return total, peak
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Float64("total_density", s.TotalDensity),
		slog.Float64("max_density", s.MaxDensity),
		slog.Int("changed_blocks", s.ChangedBlocks),
		slog.Int64("payload_bytes", s.PayloadBytes),
		slog.Float64("step_ms", s.StepMS),
	)
}

// WindowStats aggregates a run of consecutive frames.
type WindowStats struct {
	WindowStart int `csv:"-"`
	WindowEnd   int `csv:"window_end"`
	Frames      int `csv:"frames"`

	MeanDensity float64 `csv:"mean_total_density"`
	PeakDensity float64 `csv:"peak_density"`

	MeanChangedBlocks float64 `csv:"mean_changed_blocks"`
	PayloadBytes      int64   `csv:"payload_bytes"`

	StepMSMean float64 `csv:"step_ms_mean"`
	StepMSP50  float64 `csv:"step_ms_p50"`
	StepMSP90  float64 `csv:"step_ms_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation. p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogStats logs the window under the "stats" message.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"frames", s.Frames,
		"mean_total_density", s.MeanDensity,
		"peak_density", s.PeakDensity,
		"mean_changed_blocks", s.MeanChangedBlocks,
		"payload_bytes", s.PayloadBytes,
		"step_ms_mean", s.StepMSMean,
		"step_ms_p50", s.StepMSP50,
		"step_ms_p90", s.StepMSP90,
	)
}

// ExperimentSummary is the end-of-run record written to experiments.csv.
type ExperimentSummary struct {
	Mode        string  `csv:"mode"`
	SimSize     int     `csv:"sim_size"`
	RunSeconds  float64 `csv:"run_seconds"`
	TotalFrames int     `csv:"total_frames"`
	AvgFrameMS  float64 `csv:"avg_frame_ms"`
	FrameRate   float64 `csv:"frame_rate"`
	StdFrameMS  float64 `csv:"std_frame_ms"`
	P50FrameMS  float64 `csv:"p50_frame_ms"`
	P90FrameMS  float64 `csv:"p90_frame_ms"`
}

// Summarise builds the run summary from per-frame durations in milliseconds.
func Summarise(mode string, simSize int, run time.Duration, frameMS []float64) ExperimentSummary {
	s := ExperimentSummary{
		Mode:        mode,
		SimSize:     simSize,
		RunSeconds:  run.Seconds(),
		TotalFrames: len(frameMS),
	}
	if len(frameMS) == 0 {
		return s
	}

	sorted := make([]float64, len(frameMS))
	copy(sorted, frameMS)
	sort.Float64s(sorted)

	s.AvgFrameMS = stat.Mean(sorted, nil)
	if s.AvgFrameMS > 0 {
		s.FrameRate = 1000 / s.AvgFrameMS
	}
	if len(sorted) > 1 {
		s.StdFrameMS = stat.StdDev(sorted, nil)
	}
	s.P50FrameMS = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90FrameMS = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return s
}

// LogStats logs the summary under the "experiment" message.
func (s ExperimentSummary) LogStats() {
	slog.Info("experiment",
		"mode", s.Mode,
		"sim_size", s.SimSize,
		"run_seconds", s.RunSeconds,
		"total_frames", s.TotalFrames,
		"avg_frame_ms", s.AvgFrameMS,
		"frame_rate", s.FrameRate,
		"std_frame_ms", s.StdFrameMS,
		"p50_frame_ms", s.P50FrameMS,
		"p90_frame_ms", s.P90FrameMS,
	)
}
