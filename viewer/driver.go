package viewer

import (
	"fmt"

	"github.com/pthm-cable/smoke/session"
	"github.com/pthm-cable/smoke/telemetry"
)

// Status is the mode-specific part of the HUD.
type Status struct {
	Mode     string
	Tick     int
	StepMode bool
	Detail   string
	Pattern  string // non-empty enables the pattern button

	// Changed is the share of blocks the last frame patched; shown when
	// ShowChanged is set.
	Changed     float32
	ShowChanged bool
}

// Driver produces the density grid shown by the viewer.
type Driver interface {
	// Update applies one frame of input and advances if appropriate.
	Update(in session.InputState) error
	Density() []float32
	GridWidth() int
	Status() Status
}

// RealtimeDriver runs a live simulation.
type RealtimeDriver struct {
	rt *session.Realtime
	dt float32
}

// NewRealtimeDriver wraps rt, stepping by dt each frame.
func NewRealtimeDriver(rt *session.Realtime, dt float32) *RealtimeDriver {
	return &RealtimeDriver{rt: rt, dt: dt}
}

func (d *RealtimeDriver) Update(in session.InputState) error {
	d.rt.Step(d.dt, in)
	return nil
}

func (d *RealtimeDriver) Density() []float32 { return d.rt.Density() }
func (d *RealtimeDriver) GridWidth() int     { return d.rt.GridWidth() }

func (d *RealtimeDriver) Status() Status {
	return Status{
		Mode:     "realtime",
		Tick:     d.rt.Ticks(),
		StepMode: d.rt.StepMode(),
		Detail:   fmt.Sprintf("Emitters: %d", d.rt.Emitters().Count()),
	}
}

// PlayerDriver shows a recording, looping at the end. Step mode pauses
// playback; the step key then advances one frame.
type PlayerDriver struct {
	p        *session.Player
	perf     *telemetry.PerfCollector
	grid     []float32
	stepMode bool
	ticks    int
}

// NewPlayerDriver wraps an open player. perf may be nil.
func NewPlayerDriver(p *session.Player, perf *telemetry.PerfCollector) *PlayerDriver {
	return &PlayerDriver{
		p:    p,
		perf: perf,
		grid: make([]float32, p.GridWidth()*p.GridWidth()*p.GridWidth()),
	}
}

func (d *PlayerDriver) Update(in session.InputState) error {
	if in.ToggleStepMode {
		d.stepMode = !d.stepMode
	}
	if d.stepMode && !in.StepOnce {
		return nil
	}

	if d.perf != nil {
		d.perf.StartTick()
		d.perf.StartPhase(telemetry.PhaseRead)
	}
	grid, err := d.p.Next()
	if d.perf != nil {
		d.perf.EndTick()
	}
	if err != nil {
		return err
	}
	d.grid = grid
	d.ticks++
	return nil
}

func (d *PlayerDriver) Density() []float32 { return d.grid }
func (d *PlayerDriver) GridWidth() int     { return d.p.GridWidth() }

func (d *PlayerDriver) Status() Status {
	return Status{
		Mode:     "play",
		Tick:     d.ticks,
		StepMode: d.stepMode,
		Detail: fmt.Sprintf("Frame %d/%d | Loop %d | Changed blocks %d",
			d.p.Frame(), d.p.TotalFrames(), d.p.Loops(), len(d.p.LastChanged())),
		Changed:     d.p.ChangedFraction(),
		ShowChanged: true,
	}
}

// PatternDriver shows synthetic test patterns.
type PatternDriver struct {
	d     *session.PatternDriver
	width int
	ticks int
}

// NewPatternDriver wraps a pattern driver for a grid of the given width.
func NewPatternDriver(d *session.PatternDriver, gridWidth int) *PatternDriver {
	return &PatternDriver{d: d, width: gridWidth}
}

func (d *PatternDriver) Update(in session.InputState) error {
	if d.d.Step(in) {
		d.ticks++
	}
	return nil
}

func (d *PatternDriver) Density() []float32 { return d.d.Density() }
func (d *PatternDriver) GridWidth() int     { return d.width }

func (d *PatternDriver) Status() Status {
	name := d.d.Pattern().String()
	return Status{
		Mode:    "patterns",
		Tick:    d.ticks,
		Detail:  fmt.Sprintf("Pattern: %s | Count: %d", name, d.d.Count()),
		Pattern: name,
	}
}
