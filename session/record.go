package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/smokefile"
	"github.com/pthm-cable/smoke/systems"
	"github.com/pthm-cable/smoke/telemetry"
)

// Result describes a finished recording.
type Result struct {
	Path    string
	Frames  int // frames in the file, including the initial snapshot
	Bytes   int64
	Summary telemetry.ExperimentSummary
}

// Record simulates opts.Frames steps from an empty grid and writes every
// density field to a new recording.
func Record(opts Options) (Result, error) {
	if opts.Frames < 0 {
		return Result{}, fmt.Errorf("session: negative frame count %d", opts.Frames)
	}

	sim := fluid.NewWithParams(opts.Resolution, opts.Params)
	sim.SetAmbientVelocity(0, 0, 0)
	width := sim.GridWidth()

	emitters := systems.NewEmitters()
	spawnEmitter(emitters, opts.Emitter, width)
	emitters.SpawnConfigured(opts.Emitters, width)

	w := smokefile.NewWriter(opts.Locator)
	if err := w.WriteInit(opts.Name, width, sim.Density(), opts.BlockWidth); err != nil {
		return Result{}, fmt.Errorf("starting recording %q: %w", opts.Name, err)
	}

	t := newTracker(opts.PerfWindow, opts.StatsWindow, opts.Output, opts.LogStats)
	for f := 1; f <= opts.Frames; f++ {
		t.perf.StartTick()
		t.perf.StartPhase(telemetry.PhaseEmitters)
		emitters.Apply(sim, opts.DT)
		stepTimed(sim, opts.DT, t.perf)

		t.perf.StartPhase(telemetry.PhaseRecord)
		before := w.BytesWritten()
		if err := w.AddFrame(sim.Density()); err != nil {
			return Result{}, fmt.Errorf("recording frame %d: %w", f, err)
		}
		tick := t.perf.EndTick()

		total, peak := telemetry.DensityStats(sim.Density())
		fs := telemetry.FrameStats{
			Frame:         f,
			TotalDensity:  total,
			MaxDensity:    peak,
			ChangedBlocks: len(w.LastChanged()),
			PayloadBytes:  w.BytesWritten() - before,
			StepMS:        durationMS(tick),
		}
		t.observe(fs)

		if opts.LogEvery > 0 && (f%opts.LogEvery == 0 || f == opts.Frames) {
			elapsed := time.Since(t.start)
			remaining := time.Duration(float64(elapsed) / float64(f) * float64(opts.Frames-f))
			slog.Info("recording progress",
				"frame", f,
				"frames", opts.Frames,
				"stats", fs,
				"elapsed", elapsed.Round(time.Millisecond),
				"remaining", remaining.Round(time.Second),
			)
		}
	}

	if err := w.StopWrite(); err != nil {
		return Result{}, fmt.Errorf("finishing recording %q: %w", opts.Name, err)
	}

	return Result{
		Path:    w.Path(),
		Frames:  w.FrameCount(),
		Bytes:   w.BytesWritten(),
		Summary: t.finish("record", width),
	}, nil
}
