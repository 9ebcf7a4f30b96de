// Package viewer shows one slice of a density grid in a raylib window and
// turns key and panel input into session commands.
package viewer

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/camera"
	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/renderer"
	"github.com/pthm-cable/smoke/session"
	"github.com/pthm-cable/smoke/systems"
	"github.com/pthm-cable/smoke/telemetry"
	"github.com/pthm-cable/smoke/ui"
)

const controlsLegend = "[0] mouse lock  [1] step mode  [2] step  [4] cloud  [5] clear  [9] pattern  [A] axis  [PgUp/PgDn] slice  [Tab] panel  [P] perf"

const controlsWidth = 260

// Viewer draws a Driver's density grid. Create it after the raylib window
// is open.
type Viewer struct {
	title  string
	driver Driver

	screenWidth, screenHeight float32

	camera    *camera.Camera
	slice     *renderer.SliceRenderer
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel
	registry  *systems.SystemRegistry

	// perf times the driver; renderPerf times this viewer's drawing
	perf       *telemetry.PerfCollector
	renderPerf *telemetry.PerfCollector

	// panel commands wait for the next Update
	pending session.InputState

	mouseLocked bool
	showPerf    bool
	err         error
}

// New creates a viewer for d. perf is the collector the driver reports
// into and may be nil.
func New(cfg *config.Config, title string, d Driver, perf *telemetry.PerfCollector) (*Viewer, error) {
	axis, err := fluid.ParseAxis(cfg.Viewer.SliceAxis)
	if err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}

	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	gw := float32(d.GridWidth())

	v := &Viewer{
		title:        title,
		driver:       d,
		screenWidth:  w,
		screenHeight: h,
		camera:       camera.New(w, h, gw, gw, 0),
		slice:        renderer.NewSliceRenderer(axis, float32(cfg.Viewer.Gain)),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(10, 150),
		controls:     ui.NewControlsPanel(0, 0, controlsWidth),
		registry:     systems.NewSystemRegistry(),
		perf:         perf,
		renderPerf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
	v.camera.MaxZoom = v.camera.MinZoom * float32(cfg.Viewer.MaxZoom)
	v.layoutPanels()
	v.slice.Init(d.GridWidth())

	slog.Info("viewer started",
		"title", title,
		"grid_width", d.GridWidth(),
		"axis", axis.String(),
		"slice", v.slice.Index(),
	)
	return v, nil
}

func (v *Viewer) layoutPanels() {
	v.controls.SetPosition(int32(v.screenWidth)-controlsWidth-10, 10)
}

// Update polls input and advances the driver. It returns the driver's
// error, which also makes Done report true.
func (v *Viewer) Update() error {
	in := merge(v.pollInput(), v.pending)
	v.pending = session.InputState{}
	if err := v.driver.Update(in); err != nil {
		v.err = err
		slog.Error("viewer driver failed", "error", err)
		return err
	}
	return nil
}

// Draw renders the slice, HUD and panels. Panel button presses are queued
// for the next Update.
func (v *Viewer) Draw() {
	v.renderPerf.StartTick()
	v.renderPerf.StartPhase(telemetry.PhaseRender)

	grid := v.driver.Density()
	v.slice.Update(grid, v.driver.GridWidth())

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.slice.Draw(v.camera)

	status := v.driver.Status()
	total, peak := telemetry.DensityStats(grid)
	v.hud.Draw(ui.HUDData{
		Title:        v.title,
		Mode:         status.Mode,
		Tick:         status.Tick,
		FPS:          rl.GetFPS(),
		StepMode:     status.StepMode,
		Axis:         v.slice.Axis().String(),
		SliceIndex:   v.slice.Index(),
		GridWidth:    v.driver.GridWidth(),
		TotalDensity: float32(total),
		PeakDensity:  float32(peak),
		Detail:       status.Detail,
		Changed:      status.Changed,
		ShowChanged:  status.ShowChanged,
	})

	if v.showPerf {
		v.drawPerf()
	}

	res := v.controls.Draw(ui.ControlsState{
		StepMode:   status.StepMode,
		Axis:       v.slice.Axis().String(),
		SliceIndex: v.slice.Index(),
		GridWidth:  v.driver.GridWidth(),
		Gain:       v.slice.Gain(),
		Pattern:    status.Pattern,
	})

	v.hud.DrawControls(int32(v.screenWidth), int32(v.screenHeight), controlsLegend)
	rl.EndDrawing()

	v.renderPerf.EndTick()
	v.renderPerf.RecordFrame()
	v.applyControls(res)
}

func (v *Viewer) drawPerf() {
	data := ui.PerfPanelData{
		PhaseTimes: make(map[string]time.Duration, len(telemetry.Phases)),
		Registry:   v.registry,
	}
	if v.perf != nil {
		stats := v.perf.Stats()
		for id, d := range stats.PhaseAvg {
			data.PhaseTimes[id] = d
		}
		data.Total += stats.AvgTickDuration
	}
	render := v.renderPerf.Stats()
	data.PhaseTimes[telemetry.PhaseRender] = render.PhaseAvg[telemetry.PhaseRender]
	data.Total += render.AvgTickDuration
	v.perfPanel.Draw(data)
}

// applyControls routes panel actions. View settings change directly;
// simulation commands go to the driver.
func (v *Viewer) applyControls(res ui.ControlsResult) {
	if res.NextAxis {
		v.slice.SetAxis(v.slice.Axis().Next())
	}
	v.slice.SetIndex(res.SliceIndex)
	v.slice.SetGain(res.Gain)

	v.pending = merge(v.pending, session.InputState{
		ToggleStepMode: res.ToggleStepMode,
		StepOnce:       res.Step,
		RandomCloud:    res.Cloud,
		ClearDensity:   res.Clear,
		NextPattern:    res.NextPattern,
	})
}

func merge(a, b session.InputState) session.InputState {
	return session.InputState{
		ToggleStepMode:  a.ToggleStepMode != b.ToggleStepMode,
		StepOnce:        a.StepOnce || b.StepOnce,
		StepHeld:        a.StepHeld || b.StepHeld,
		RandomCloud:     a.RandomCloud || b.RandomCloud,
		ClearDensity:    a.ClearDensity || b.ClearDensity,
		NextPattern:     a.NextPattern || b.NextPattern,
		ToggleMouseLock: a.ToggleMouseLock != b.ToggleMouseLock,
	}
}

// Done reports whether the window was closed or the driver failed.
func (v *Viewer) Done() bool {
	return v.err != nil || rl.WindowShouldClose()
}

// Err returns the driver error that stopped the viewer, if any.
func (v *Viewer) Err() error { return v.err }

// Tick returns the driver's tick counter.
func (v *Viewer) Tick() int { return v.driver.Status().Tick }

// Unload frees GPU resources.
func (v *Viewer) Unload() {
	if v.mouseLocked {
		v.setMouseLock(false)
	}
	v.slice.Unload()
}
