package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Mode         string
	Tick         int
	FPS          int32
	StepMode     bool
	Axis         string
	SliceIndex   int
	GridWidth    int
	TotalDensity float32
	PeakDensity  float32
	Detail       string // mode-specific line, e.g. playback frame or pattern name
	Changed      float32
	ShowChanged  bool // draw Changed as a bar (playback only)
}

const hudBarWidth = 300

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	y := int32(36)
	y = r.DrawLabelValue(10, y, "Mode", fmt.Sprintf("%s | Tick %d | FPS %d", data.Mode, data.Tick, data.FPS))
	y = r.DrawLabelValue(10, y, "Slice", fmt.Sprintf("%s=%d of %d", data.Axis, data.SliceIndex, data.GridWidth))
	y = r.DrawLabelValue(10, y, "Density", fmt.Sprintf("%.2f (peak %.3f)", data.TotalDensity, data.PeakDensity))
	if data.Detail != "" {
		y = r.DrawLabelValue(10, y, "Status", data.Detail)
	}
	if data.ShowChanged {
		y = r.DrawBar(10, y, "Changed", data.Changed, hudBarWidth)
	}
	if data.StepMode {
		rl.DrawText("STEP MODE", 10, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Total      time.Duration
	Registry   *systems.SystemRegistry
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Phases are listed in registry order.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Phase Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	if data.Registry == nil {
		return
	}
	for _, id := range data.Registry.IDs() {
		avg, ok := data.PhaseTimes[id]
		if !ok {
			continue
		}
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", data.Registry.GetName(id), avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
