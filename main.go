package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/session"
	"github.com/pthm-cable/smoke/smokefile"
	"github.com/pthm-cable/smoke/telemetry"
	"github.com/pthm-cable/smoke/viewer"
)

// patternInterval is the pause between synthetic pattern steps.
const patternInterval = 100 * time.Millisecond

type runOptions struct {
	mode     string
	name     string
	frames   int
	headless bool
	maxTicks int
	logStats bool
	seed     int64
	output   *telemetry.OutputManager
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "realtime", "Run mode: realtime, record, play or patterns")
	name := flag.String("name", "smoke", "Recording name (or path) for record and play")
	frames := flag.Int("frames", 0, "Frames to record or play (0 = use config / whole file)")
	resolution := flag.Int("resolution", 0, "Full grid width including the halo (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	headless := flag.Bool("headless", false, "Run without graphics")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	seed := flag.Int64("seed", 0, "RNG seed for random clouds (0 = time-based)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *resolution > 0 {
		cfg.Simulation.Resolution = *resolution
	}
	if *frames > 0 {
		cfg.Recording.Frames = *frames
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ro := runOptions{
		mode:     *mode,
		name:     *name,
		frames:   *frames,
		headless: *headless,
		maxTicks: *maxTicks,
		logStats: *logStats,
		seed:     rngSeed,
		output:   output,
	}
	err = run(cfg, ro)
	if cerr := output.Close(); cerr != nil {
		slog.Error("failed to close output files", "error", cerr)
	}
	if err != nil {
		slog.Error("run failed", "mode", ro.mode, "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, ro runOptions) error {
	switch ro.mode {
	case "record":
		return runRecord(cfg, ro)
	case "play":
		return runPlay(cfg, ro)
	case "realtime":
		return runRealtime(cfg, ro)
	case "patterns":
		return runPatterns(cfg, ro)
	}
	return fmt.Errorf("unknown mode %q", ro.mode)
}

func runRecord(cfg *config.Config, ro runOptions) error {
	opts := session.OptionsFromConfig(cfg, ro.name)
	opts.LogStats = ro.logStats
	opts.Output = ro.output

	slog.Info("starting recording",
		"name", ro.name,
		"frames", opts.Frames,
		"resolution", opts.Resolution,
		"block_width", opts.BlockWidth,
	)
	res, err := session.Record(opts)
	if err != nil {
		return err
	}
	slog.Info("recording finished",
		"path", res.Path,
		"frames", res.Frames,
		"bytes", res.Bytes,
		"fps", res.Summary.FrameRate,
	)
	return nil
}

func runPlay(cfg *config.Config, ro runOptions) error {
	loc := smokefile.Locator{Dirs: cfg.Derived.SearchPaths, Ext: cfg.Recording.Extension}
	p, err := session.OpenPlayer(loc, ro.name)
	if err != nil {
		return err
	}
	defer p.Close()

	if ro.headless {
		frames := p.TotalFrames()
		if ro.frames > 0 {
			frames = ro.frames
		}
		if ro.maxTicks > 0 {
			frames = ro.maxTicks
		}
		opts := session.OptionsFromConfig(cfg, ro.name)
		opts.LogStats = ro.logStats
		opts.Output = ro.output
		_, err := session.Play(p, frames, opts)
		return err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	return runViewer(cfg, ro, "Smoke Playback", viewer.NewPlayerDriver(p, perf), perf)
}

func runRealtime(cfg *config.Config, ro runOptions) error {
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	rt := session.NewRealtime(cfg, rand.New(rand.NewSource(ro.seed)), perf)

	if !ro.headless {
		return runViewer(cfg, ro, "Smoke", viewer.NewRealtimeDriver(rt, cfg.Derived.DT32), perf)
	}

	// Headless mode - pure CPU simulation, no raylib needed
	slog.Info("starting headless simulation",
		"seed", ro.seed,
		"resolution", rt.GridWidth(),
		"max_ticks", ro.maxTicks,
	)
	window := cfg.Telemetry.PerfCollectorWindow
	for {
		rt.Step(cfg.Derived.DT32, session.InputState{})

		if ro.logStats && window > 0 && rt.Ticks()%window == 0 {
			perf.Stats().LogStats()
			if err := ro.output.WritePerf(perf.Stats(), rt.Ticks()); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
		if ro.maxTicks > 0 && rt.Ticks() >= ro.maxTicks {
			slog.Info("max ticks reached", "tick", rt.Ticks())
			return nil
		}
	}
}

func runPatterns(cfg *config.Config, ro runOptions) error {
	width := cfg.Simulation.Resolution
	if ro.headless {
		d := session.NewPatternDriver(width, 0)
		for tick := 1; ro.maxTicks <= 0 || tick <= ro.maxTicks; tick++ {
			d.Step(session.InputState{})
		}
		slog.Info("max ticks reached", "tick", ro.maxTicks, "pattern", d.Pattern().String())
		return nil
	}
	d := session.NewPatternDriver(width, patternInterval)
	return runViewer(cfg, ro, "Smoke Patterns", viewer.NewPatternDriver(d, width), nil)
}

func runViewer(cfg *config.Config, ro runOptions, title string, d viewer.Driver, perf *telemetry.PerfCollector) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := viewer.New(cfg, title, d, perf)
	if err != nil {
		return err
	}
	defer v.Unload()

	for !v.Done() {
		if err := v.Update(); err != nil {
			return err
		}
		v.Draw()

		if ro.maxTicks > 0 && v.Tick() >= ro.maxTicks {
			break
		}
	}
	return nil
}
