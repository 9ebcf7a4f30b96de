package session

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/patterns"
	"github.com/pthm-cable/smoke/systems"
	"github.com/pthm-cable/smoke/telemetry"
)

// InputState is the set of user commands for one frame. Edge-triggered
// fields are true only on the frame the key went down.
type InputState struct {
	ToggleStepMode  bool
	StepOnce        bool
	StepHeld        bool // step key held down
	RandomCloud     bool
	ClearDensity    bool
	NextPattern     bool
	ToggleMouseLock bool
}

// semiStepInterval paces stepping while the step key is held in step mode.
const semiStepInterval = 20 * time.Millisecond

// Realtime advances a live simulation from per-frame input.
type Realtime struct {
	sim      *fluid.Simulation
	emitters *systems.Emitters
	perf     *telemetry.PerfCollector
	rng      *rand.Rand

	cloudRadius int
	cloudAmount float32

	stepMode bool
	lastSemi time.Time
	ticks    int
}

// NewRealtime builds an interactive session from the configuration.
func NewRealtime(cfg *config.Config, rng *rand.Rand, perf *telemetry.PerfCollector) *Realtime {
	sim := fluid.NewWithParams(cfg.Simulation.Resolution, ParamsFromConfig(cfg.Simulation))
	a := cfg.Simulation.Ambient
	sim.SetAmbientVelocity(float32(a.X), float32(a.Y), float32(a.Z))

	emitters := systems.NewEmitters()
	spawnEmitter(emitters, cfg.Realtime.Emitter, sim.GridWidth())
	emitters.SpawnConfigured(cfg.Emitters, sim.GridWidth())

	if perf == nil {
		perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	}
	return &Realtime{
		sim:         sim,
		emitters:    emitters,
		perf:        perf,
		rng:         rng,
		cloudRadius: cfg.Realtime.CloudRadius,
		cloudAmount: float32(cfg.Realtime.CloudAmount),
	}
}

// Step applies in and, unless step mode holds it back, advances the
// simulation by dt. It reports whether the simulation advanced.
func (r *Realtime) Step(dt float32, in InputState) bool {
	if in.ToggleStepMode {
		r.stepMode = !r.stepMode
		slog.Info("step mode", "enabled", r.stepMode)
	}
	if in.RandomCloud {
		r.sim.AddRandomDensityCloud(r.rng, r.cloudRadius, r.cloudAmount)
	}
	if in.ClearDensity {
		r.sim.ClearDensity()
	}

	advance := !r.stepMode || in.StepOnce
	if r.stepMode && !in.StepOnce && in.StepHeld {
		if now := time.Now(); now.Sub(r.lastSemi) > semiStepInterval {
			r.lastSemi = now
			advance = true
		}
	}
	if !advance {
		return false
	}

	r.perf.StartTick()
	r.perf.StartPhase(telemetry.PhaseEmitters)
	r.emitters.Apply(r.sim, dt)
	stepTimed(r.sim, dt, r.perf)
	r.perf.EndTick()
	r.ticks++
	return true
}

// Density returns the live density field.
func (r *Realtime) Density() []float32 { return r.sim.Density() }

// GridWidth returns the full grid width.
func (r *Realtime) GridWidth() int { return r.sim.GridWidth() }

// Simulation exposes the underlying solver.
func (r *Realtime) Simulation() *fluid.Simulation { return r.sim }

// Emitters exposes the emitter system.
func (r *Realtime) Emitters() *systems.Emitters { return r.emitters }

// StepMode reports whether the simulation only advances on request.
func (r *Realtime) StepMode() bool { return r.stepMode }

// Ticks returns the number of steps taken.
func (r *Realtime) Ticks() int { return r.ticks }

// PatternDriver fills a grid with synthetic patterns, one step per interval.
type PatternDriver struct {
	grid     []float32
	pattern  patterns.Pattern
	count    int
	interval time.Duration
	last     time.Time
}

// NewPatternDriver creates a driver for a grid of the given width. interval
// is the minimum time between steps; zero steps on every call.
func NewPatternDriver(gridWidth int, interval time.Duration) *PatternDriver {
	d := &PatternDriver{
		grid:     make([]float32, gridWidth*gridWidth*gridWidth),
		interval: interval,
	}
	d.pattern.Fill(d.grid, d.count)
	return d
}

// Step switches pattern on NextPattern and advances the step counter when
// the interval has elapsed. It reports whether the grid changed.
func (d *PatternDriver) Step(in InputState) bool {
	if in.NextPattern {
		d.pattern = d.pattern.Next()
		d.count = 0
		slog.Info("pattern", "name", d.pattern.String())
		d.pattern.Fill(d.grid, d.count)
		return true
	}
	if d.interval > 0 {
		now := time.Now()
		if now.Sub(d.last) < d.interval {
			return false
		}
		d.last = now
	}
	d.count++
	d.pattern.Fill(d.grid, d.count)
	return true
}

// Density returns the current pattern grid.
func (d *PatternDriver) Density() []float32 { return d.grid }

// Pattern returns the active pattern.
func (d *PatternDriver) Pattern() patterns.Pattern { return d.pattern }

// Count returns the step counter of the active pattern.
func (d *PatternDriver) Count() int { return d.count }
