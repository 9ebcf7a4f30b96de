package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pthm-cable/smoke/smokefile"
	"github.com/pthm-cable/smoke/telemetry"
)

// ErrEmptyRecording is returned when a recording declares no frames.
var ErrEmptyRecording = errors.New("session: recording has no frames")

// Player replays a recording frame by frame, starting over after the last
// frame.
type Player struct {
	r      *smokefile.Reader
	path   string
	frame  int // frames returned since the last restart
	loops  int
	total  int
	width  int
	header smokefile.FileHeader
}

// OpenPlayer opens name through loc. name is tried as a path first, then in
// each search directory.
func OpenPlayer(loc smokefile.Locator, name string) (*Player, error) {
	r := smokefile.NewReader(loc)
	if err := r.ReadInit(name); err != nil {
		return nil, fmt.Errorf("opening recording %q: %w", name, err)
	}
	h := r.Header()
	if h.TotalFrames == 0 {
		r.StopRead()
		return nil, fmt.Errorf("%w: %s", ErrEmptyRecording, r.Path())
	}

	slog.Info("playback opened", "path", r.Path(), "frames", h.TotalFrames, "grid_width", h.GridWidth)
	return &Player{
		r:      r,
		path:   r.Path(),
		total:  int(h.TotalFrames),
		width:  int(h.GridWidth),
		header: h,
	}, nil
}

// Next returns the next density grid. After the last frame the file is
// reopened and playback resumes from frame 0. The slice is owned by the
// player and is overwritten by the following call.
func (p *Player) Next() ([]float32, error) {
	grid, err := p.r.ReadNextFrame()
	if errors.Is(err, io.EOF) {
		if err := p.restart(); err != nil {
			return nil, err
		}
		grid, err = p.r.ReadNextFrame()
	}
	if err != nil {
		return nil, err
	}
	p.frame++
	return grid, nil
}

func (p *Player) restart() error {
	if err := p.r.StopRead(); err != nil {
		return err
	}
	if err := p.r.ReadInit(p.path); err != nil {
		return fmt.Errorf("reopening recording: %w", err)
	}
	if h := p.r.Header(); h != p.header {
		p.r.StopRead()
		return fmt.Errorf("recording %s changed during playback", p.path)
	}
	p.frame = 0
	p.loops++
	slog.Debug("playback looped", "path", p.path, "loops", p.loops)
	return nil
}

// Close ends playback.
func (p *Player) Close() error {
	if err := p.r.StopRead(); err != nil && !errors.Is(err, smokefile.ErrNotInitialised) {
		return err
	}
	return nil
}

// Frame returns the index of the frame last returned by Next.
func (p *Player) Frame() int { return p.frame - 1 }

// Loops returns how many times playback has wrapped around.
func (p *Player) Loops() int { return p.loops }

// TotalFrames returns the frame count declared by the file header.
func (p *Player) TotalFrames() int { return p.total }

// GridWidth returns the recorded grid width.
func (p *Player) GridWidth() int { return p.width }

// Path returns the resolved recording path.
func (p *Player) Path() string { return p.path }

// LastChanged returns the blocks patched by the last frame read.
func (p *Player) LastChanged() []int { return p.r.LastChanged() }

// ChangedFraction returns the share of blocks the last frame patched, in
// [0, 1]. It is 0 before the first frame.
func (p *Player) ChangedFraction() float32 {
	count := p.r.Layout().BlockCount()
	if count == 0 || p.frame == 0 {
		return 0
	}
	return float32(len(p.r.LastChanged())) / float32(count)
}

// Play reads frames from an open player, looping as needed, and reports
// per-frame stats the same way Record does. It returns the run summary; a
// read error stops playback early and is returned with the partial summary.
func Play(p *Player, frames int, opts Options) (telemetry.ExperimentSummary, error) {
	t := newTracker(opts.PerfWindow, opts.StatsWindow, opts.Output, opts.LogStats)
	for f := 0; f < frames; f++ {
		t.perf.StartTick()
		t.perf.StartPhase(telemetry.PhaseRead)
		grid, err := p.Next()
		tick := t.perf.EndTick()
		if err != nil {
			return t.finish("play", p.GridWidth()), fmt.Errorf("playback frame %d: %w", f, err)
		}

		total, peak := telemetry.DensityStats(grid)
		t.observe(telemetry.FrameStats{
			Frame:         p.Frame(),
			TotalDensity:  total,
			MaxDensity:    peak,
			ChangedBlocks: len(p.LastChanged()),
			StepMS:        durationMS(tick),
		})
	}
	return t.finish("play", p.GridWidth()), nil
}
