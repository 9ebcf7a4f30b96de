package session

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/smokefile"
	"github.com/pthm-cable/smoke/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Simulation.Resolution = 16
	return cfg
}

func testOptions(t *testing.T, name string, frames int) Options {
	t.Helper()
	opts := OptionsFromConfig(testConfig(t), name)
	opts.Frames = frames
	opts.Locator = smokefile.Locator{Dirs: []string{t.TempDir()}}
	opts.LogEvery = 1
	return opts
}

func TestParamsFromConfigMatchesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, fluid.DefaultParams(), ParamsFromConfig(cfg.Simulation))
}

func TestRecordThenPlayLoops(t *testing.T) {
	opts := testOptions(t, "session", 3)

	res, err := Record(opts)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Frames)
	assert.Equal(t, filepath.Join(opts.Locator.Dirs[0], "session.dat"), res.Path)
	assert.Equal(t, 3, res.Summary.TotalFrames)
	assert.Equal(t, "record", res.Summary.Mode)

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, info.Size())

	p, err := OpenPlayer(opts.Locator, "session")
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 4, p.TotalFrames())
	assert.Equal(t, 16, p.GridWidth())

	var totals []float64
	for i := 0; i < 4; i++ {
		grid, err := p.Next()
		require.NoError(t, err)
		total, _ := telemetry.DensityStats(grid)
		totals = append(totals, total)
		assert.Equal(t, i, p.Frame())
	}
	assert.Zero(t, totals[0], "frame 0 is the empty starting grid")
	assert.Greater(t, totals[3], totals[1], "the emitter keeps adding density")

	grid, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Loops())
	assert.Equal(t, 0, p.Frame())
	total, _ := telemetry.DensityStats(grid)
	assert.Zero(t, total, "looping restarts at frame 0")
}

func TestPlayerChangedFraction(t *testing.T) {
	opts := testOptions(t, "changed", 2)
	_, err := Record(opts)
	require.NoError(t, err)

	p, err := OpenPlayer(opts.Locator, "changed")
	require.NoError(t, err)
	defer p.Close()
	assert.Zero(t, p.ChangedFraction(), "nothing read yet")

	_, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, float32(1), p.ChangedFraction(), "frame 0 carries every block")

	_, err = p.Next()
	require.NoError(t, err)
	blocks := (16 / opts.BlockWidth) * (16 / opts.BlockWidth) * (16 / opts.BlockWidth)
	assert.Equal(t, float32(len(p.LastChanged()))/float32(blocks), p.ChangedFraction())
	assert.LessOrEqual(t, p.ChangedFraction(), float32(1))
}

func TestRecordWritesTelemetry(t *testing.T) {
	opts := testOptions(t, "telemetry", 5)
	opts.StatsWindow = 2
	out, err := telemetry.NewOutputManager(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	opts.Output = out

	_, err = Record(opts)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	frames, err := os.ReadFile(filepath.Join(out.Dir(), "frames.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(frames)), "\n"), 6)

	windows, err := os.ReadFile(filepath.Join(out.Dir(), "telemetry.csv"))
	require.NoError(t, err)
	// two full windows plus the partial one flushed at the end
	assert.Len(t, strings.Split(strings.TrimSpace(string(windows)), "\n"), 4)

	exp, err := os.ReadFile(filepath.Join(out.Dir(), "experiments.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(exp), "record,16,")
}

func TestRecordRejectsUnevenBlocks(t *testing.T) {
	opts := testOptions(t, "uneven", 2)
	opts.BlockWidth = 5

	_, err := Record(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, smokefile.ErrConfiguration))
}

func TestOpenPlayerMissingFile(t *testing.T) {
	_, err := OpenPlayer(smokefile.Locator{Dirs: []string{t.TempDir()}}, "absent")
	require.Error(t, err)
	var ioErr *smokefile.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestOpenPlayerEmptyRecording(t *testing.T) {
	dir := t.TempDir()
	h := smokefile.FileHeader{GridWidth: 16, BlockWidth: 8, BlockArrayWidth: 2, FrameHeaderWords: 1}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.dat"), h.Encode(), 0o644))

	_, err := OpenPlayer(smokefile.Locator{Dirs: []string{dir}}, "empty")
	assert.ErrorIs(t, err, ErrEmptyRecording)
}

func TestPlayLoopsThroughRecording(t *testing.T) {
	opts := testOptions(t, "play", 3)
	_, err := Record(opts)
	require.NoError(t, err)

	p, err := OpenPlayer(opts.Locator, "play")
	require.NoError(t, err)
	defer p.Close()

	summary, err := Play(p, 10, opts)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalFrames)
	assert.Equal(t, "play", summary.Mode)
	assert.Equal(t, 2, p.Loops())
}

func TestRealtimeStepModes(t *testing.T) {
	cfg := testConfig(t)
	rt := NewRealtime(cfg, rand.New(rand.NewSource(1)), nil)
	require.Equal(t, 16, rt.GridWidth())
	require.Equal(t, 1, rt.Emitters().Count())

	assert.True(t, rt.Step(0.1, InputState{}))
	assert.Greater(t, rt.Simulation().TotalDensity(), float32(0))

	assert.False(t, rt.Step(0.1, InputState{ToggleStepMode: true}))
	assert.True(t, rt.StepMode())
	assert.Equal(t, 1, rt.Ticks())

	assert.True(t, rt.Step(0.1, InputState{StepOnce: true}))
	assert.Equal(t, 2, rt.Ticks())

	assert.False(t, rt.Step(0.1, InputState{ClearDensity: true}))
	assert.Zero(t, rt.Simulation().TotalDensity())

	assert.False(t, rt.Step(0.1, InputState{RandomCloud: true}))
	cloud := rt.Simulation().TotalDensity()
	assert.Greater(t, cloud, float32(0))
	assert.LessOrEqual(t, cloud, float32(700))
}

func TestRealtimeHeldStepIsPaced(t *testing.T) {
	rt := NewRealtime(testConfig(t), rand.New(rand.NewSource(1)), nil)
	rt.Step(0.1, InputState{ToggleStepMode: true})

	assert.True(t, rt.Step(0.1, InputState{StepHeld: true}))
	assert.False(t, rt.Step(0.1, InputState{StepHeld: true}), "held step must wait for the interval")
	time.Sleep(semiStepInterval + 5*time.Millisecond)
	assert.True(t, rt.Step(0.1, InputState{StepHeld: true}))
}

func TestPatternDriver(t *testing.T) {
	d := NewPatternDriver(4, 0)
	assert.Len(t, d.Density(), 64)
	assert.Equal(t, float32(0.7), d.Density()[0])

	assert.True(t, d.Step(InputState{}))
	assert.Equal(t, 1, d.Count())
	assert.Zero(t, d.Density()[0])
	assert.Equal(t, float32(0.7), d.Density()[1])

	assert.True(t, d.Step(InputState{NextPattern: true}))
	assert.Equal(t, "incremental", d.Pattern().String())
	assert.Equal(t, 0, d.Count())

	paced := NewPatternDriver(4, time.Hour)
	assert.True(t, paced.Step(InputState{}))
	assert.False(t, paced.Step(InputState{}))
}
