// Package config provides configuration loading and access for the smoke solver.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all solver, recording and viewer configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Simulation SimulationConfig `yaml:"simulation"`
	Recording  RecordingConfig  `yaml:"recording"`
	Realtime   RealtimeConfig   `yaml:"realtime"`
	Emitters   []EmitterConfig  `yaml:"emitters"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ViewerConfig holds slice viewer settings.
type ViewerConfig struct {
	SliceAxis string  `yaml:"slice_axis"` // x, y or z
	Gain      float64 `yaml:"gain"`       // Density multiplier before the colour ramp
	MaxZoom   float64 `yaml:"max_zoom"`
}

// SimulationConfig holds fluid solver parameters.
type SimulationConfig struct {
	Resolution       int     `yaml:"resolution"` // Full grid width including the halo
	DT               float64 `yaml:"dt"`
	DiffuseRate      float64 `yaml:"diffuse_rate"`
	Viscosity        float64 `yaml:"viscosity"`
	Vorticity        float64 `yaml:"vorticity"`
	Buoyancy         float64 `yaml:"buoyancy"`
	SolverIterations int     `yaml:"solver_iterations"` // Gauss-Seidel sweeps for diffusion and projection
	Diffuse          bool    `yaml:"diffuse"`
	Advect           bool    `yaml:"advect"`
	DensityStep      bool    `yaml:"density_step"`
	VelocityStep     bool    `yaml:"velocity_step"`
	Ambient          Vec3    `yaml:"ambient"` // Ambient velocity the flow relaxes toward
}

// Vec3 is a plain three-component vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// RecordingConfig holds recording file parameters.
type RecordingConfig struct {
	Dir         string        `yaml:"dir"`
	Extension   string        `yaml:"extension"`
	SearchPaths []string      `yaml:"search_paths"` // Fallback directories, tried in order
	BlockWidth  int           `yaml:"block_width"`
	Frames      int           `yaml:"frames"`
	LogEvery    int           `yaml:"log_every"` // Progress log interval in frames
	Emitter     EmitterConfig `yaml:"emitter"`
}

// RealtimeConfig holds interactive mode parameters.
type RealtimeConfig struct {
	Emitter     EmitterConfig `yaml:"emitter"`
	CloudRadius int           `yaml:"cloud_radius"`
	CloudAmount float64       `yaml:"cloud_amount"`
}

// EmitterConfig describes a density source.
// Each axis position is int(frac*gridWidth) + offset.
type EmitterConfig struct {
	XFrac    float64 `yaml:"x_frac"`
	YFrac    float64 `yaml:"y_frac"`
	ZFrac    float64 `yaml:"z_frac"`
	XOffset  int     `yaml:"x_offset"`
	YOffset  int     `yaml:"y_offset"`
	ZOffset  int     `yaml:"z_offset"`
	Amount   float64 `yaml:"amount"`
	Radius   int     `yaml:"radius"`
	Lifetime float64 `yaml:"lifetime"` // Seconds; 0 = forever
}

// Cell returns the emitter's grid cell for a grid of the given width.
func (e EmitterConfig) Cell(gridWidth int) (x, y, z int) {
	w := float64(gridWidth)
	x = int(e.XFrac*w) + e.XOffset
	y = int(e.YFrac*w) + e.YOffset
	z = int(e.ZFrac*w) + e.ZOffset
	return x, y, z
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Frames per aggregated stats record
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32 // Simulation.DT as float32
	ScreenW32   float32
	ScreenH32   float32
	SearchPaths []string // Recording.Dir followed by Recording.SearchPaths
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the solver or the file format cannot run with.
func (c *Config) validate() error {
	if c.Simulation.Resolution < 3 {
		return fmt.Errorf("simulation.resolution must be at least 3, got %d", c.Simulation.Resolution)
	}
	if c.Simulation.SolverIterations < 1 {
		return fmt.Errorf("simulation.solver_iterations must be positive, got %d", c.Simulation.SolverIterations)
	}
	if c.Recording.BlockWidth < 1 {
		return fmt.Errorf("recording.block_width must be positive, got %d", c.Recording.BlockWidth)
	}
	switch c.Viewer.SliceAxis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("viewer.slice_axis must be x, y or z, got %q", c.Viewer.SliceAxis)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.SearchPaths = make([]string, 0, len(c.Recording.SearchPaths)+1)
	if c.Recording.Dir != "" {
		c.Derived.SearchPaths = append(c.Derived.SearchPaths, c.Recording.Dir)
	}
	c.Derived.SearchPaths = append(c.Derived.SearchPaths, c.Recording.SearchPaths...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
