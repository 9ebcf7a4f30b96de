package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel shows and edits.
type ControlsState struct {
	StepMode   bool
	Axis       string
	SliceIndex int
	GridWidth  int
	Gain       float32
	Pattern    string // empty hides the pattern button
}

// ControlsResult reports the actions taken on the panel this frame.
type ControlsResult struct {
	ToggleStepMode bool
	Step           bool
	Cloud          bool
	Clear          bool
	NextAxis       bool
	NextPattern    bool
	SliceIndex     int
	Gain           float32
}

// ControlsPanel renders the right-side raygui controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Contains reports whether a screen point is over the visible panel, so
// mouse input there is not forwarded to the camera.
func (c *ControlsPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return px >= float32(c.x) && px < float32(c.x+c.width) && py >= float32(c.y) && py < float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return 260
}

// Draw renders the panel and returns the actions taken. Unchanged slider
// values are passed through.
func (c *ControlsPanel) Draw(state ControlsState) ControlsResult {
	res := ControlsResult{SliceIndex: state.SliceIndex, Gain: state.Gain}
	if !c.visible {
		return res
	}

	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + pad)
	y := c.y + pad
	inner := float32(c.width - 2*pad)
	half := (inner - 10) / 2

	y = r.DrawSectionHeader(c.x+pad, y, "Controls")
	y += 4

	stepLabel := "Step Mode: Off"
	if state.StepMode {
		stepLabel = "Step Mode: On"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, stepLabel) {
		res.ToggleStepMode = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: float32(y), Width: half, Height: 24}, "Step") {
		res.Step = true
	}
	y += 30

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, "Cloud") {
		res.Cloud = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: float32(y), Width: half, Height: 24}, "Clear") {
		res.Clear = true
	}
	y += 30

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, "Axis: "+state.Axis) {
		res.NextAxis = true
	}
	if state.Pattern != "" {
		if gui.Button(rl.Rectangle{X: x + half + 10, Y: float32(y), Width: half, Height: 24}, state.Pattern) {
			res.NextPattern = true
		}
	}
	y += 36

	rl.DrawText(fmt.Sprintf("Slice %s = %d", state.Axis, state.SliceIndex), c.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	maxIndex := float32(state.GridWidth - 1)
	if maxIndex < 0 {
		maxIndex = 0
	}
	idx := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 50, Height: 16},
		"0", fmt.Sprintf("%d", state.GridWidth-1),
		float32(state.SliceIndex), 0, maxIndex,
	)
	res.SliceIndex = int(idx + 0.5)
	y += 28

	rl.DrawText(fmt.Sprintf("Gain %.2f", state.Gain), c.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	res.Gain = gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 50, Height: 16},
		"0", "2",
		state.Gain, 0.01, 2,
	)

	return res
}
