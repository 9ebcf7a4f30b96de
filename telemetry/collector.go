// Package telemetry collects frame statistics and tick timing and writes
// them as structured logs and CSV files.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Collector folds FrameStats into WindowStats every window frames.
type Collector struct {
	window int
	frames []FrameStats
	steps  []float64
}

// NewCollector returns a collector emitting a window every window frames.
func NewCollector(window int) *Collector {
	if window < 1 {
		window = 60
	}
	return &Collector{window: window}
}

// Add records a frame. It returns the completed window when this frame
// fills it.
func (c *Collector) Add(fs FrameStats) (WindowStats, bool) {
	c.frames = append(c.frames, fs)
	if len(c.frames) < c.window {
		return WindowStats{}, false
	}
	ws := c.Flush()
	return ws, true
}

// Flush aggregates and clears whatever frames are pending.
func (c *Collector) Flush() WindowStats {
	n := len(c.frames)
	if n == 0 {
		return WindowStats{}
	}
	ws := WindowStats{
		WindowStart: c.frames[0].Frame,
		WindowEnd:   c.frames[n-1].Frame,
		Frames:      n,
	}

	c.steps = c.steps[:0]
	var density, changed float64
	for _, f := range c.frames {
		density += f.TotalDensity
		changed += float64(f.ChangedBlocks)
		ws.PayloadBytes += f.PayloadBytes
		if f.MaxDensity > ws.PeakDensity {
			ws.PeakDensity = f.MaxDensity
		}
		c.steps = append(c.steps, f.StepMS)
	}
	ws.MeanDensity = density / float64(n)
	ws.MeanChangedBlocks = changed / float64(n)

	sort.Float64s(c.steps)
	ws.StepMSMean = stat.Mean(c.steps, nil)
	ws.StepMSP50 = Percentile(c.steps, 0.50)
	ws.StepMSP90 = Percentile(c.steps, 0.90)

	c.frames = c.frames[:0]
	return ws
}
