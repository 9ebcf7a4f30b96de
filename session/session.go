// Package session drives the solver and the recording format: offline
// recording, looping playback, interactive stepping and synthetic patterns.
package session

import (
	"github.com/pthm-cable/smoke/components"
	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/smokefile"
	"github.com/pthm-cable/smoke/systems"
	"github.com/pthm-cable/smoke/telemetry"
)

// Options configures a recording or playback session.
type Options struct {
	Name       string // recording name, resolved through Locator
	Frames     int    // frames simulated after the initial snapshot
	Resolution int    // full grid width including the halo
	BlockWidth int
	DT         float32
	Params     fluid.Params
	Locator    smokefile.Locator

	Emitter  config.EmitterConfig   // the recorded source
	Emitters []config.EmitterConfig // extra sources

	LogEvery    int // progress log interval in frames; 0 disables
	LogStats    bool
	PerfWindow  int
	StatsWindow int
	Output      *telemetry.OutputManager // nil disables CSV output
}

// OptionsFromConfig builds recording options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, name string) Options {
	return Options{
		Name:        name,
		Frames:      cfg.Recording.Frames,
		Resolution:  cfg.Simulation.Resolution,
		BlockWidth:  cfg.Recording.BlockWidth,
		DT:          cfg.Derived.DT32,
		Params:      ParamsFromConfig(cfg.Simulation),
		Locator:     smokefile.Locator{Dirs: cfg.Derived.SearchPaths, Ext: cfg.Recording.Extension},
		Emitter:     cfg.Recording.Emitter,
		Emitters:    cfg.Emitters,
		LogEvery:    cfg.Recording.LogEvery,
		PerfWindow:  cfg.Telemetry.PerfCollectorWindow,
		StatsWindow: cfg.Telemetry.StatsWindow,
	}
}

// ParamsFromConfig converts the simulation section to solver parameters.
func ParamsFromConfig(c config.SimulationConfig) fluid.Params {
	return fluid.Params{
		DiffuseRate:  float32(c.DiffuseRate),
		Viscosity:    float32(c.Viscosity),
		Vorticity:    float32(c.Vorticity),
		Buoyancy:     float32(c.Buoyancy),
		Iterations:   c.SolverIterations,
		Diffuse:      c.Diffuse,
		Advect:       c.Advect,
		DensityStep:  c.DensityStep,
		VelocityStep: c.VelocityStep,
	}
}

// spawnEmitter adds a persistent or timed emitter placed from its config.
func spawnEmitter(s *systems.Emitters, c config.EmitterConfig, gridWidth int) {
	x, y, z := c.Cell(gridWidth)
	s.Spawn(components.Emitter{X: x, Y: y, Z: z, Amount: float32(c.Amount), Radius: c.Radius}, float32(c.Lifetime))
}

// stepTimed runs sim.Update with each stage timed as its own phase.
func stepTimed(sim *fluid.Simulation, dt float32, perf *telemetry.PerfCollector) {
	if sim.Params.VelocityStep {
		perf.StartPhase(telemetry.PhaseVelocityStep)
		sim.VelocityStep(dt)
	}
	if sim.Params.DensityStep {
		perf.StartPhase(telemetry.PhaseDensityStep)
		sim.DensityStep(dt)
	}
}
