// Package renderer draws density slices with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/camera"
	"github.com/pthm-cable/smoke/fluid"
)

// SliceRenderer uploads one plane of the density grid to a texture and
// draws it through a camera.
type SliceRenderer struct {
	tex   rl.Texture2D
	width int

	axis  fluid.Axis
	index int
	gain  float32

	values []float32
	pixels []color.RGBA

	initialized bool
}

// NewSliceRenderer creates a renderer for the given slice axis. The slice
// index starts at the middle of the grid once the grid width is known.
func NewSliceRenderer(axis fluid.Axis, gain float32) *SliceRenderer {
	return &SliceRenderer{axis: axis, gain: gain, index: -1}
}

// Init allocates the texture (must be called after the raylib window is created).
func (r *SliceRenderer) Init(gridWidth int) {
	if r.initialized && r.width == gridWidth {
		return
	}
	if r.initialized {
		rl.UnloadTexture(r.tex)
	}

	r.width = gridWidth
	if r.index < 0 || r.index >= gridWidth {
		r.index = gridWidth / 2
	}

	img := rl.GenImageColor(gridWidth, gridWidth, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update extracts the current slice from grid and uploads it.
func (r *SliceRenderer) Update(grid []float32, gridWidth int) {
	r.Init(gridWidth)
	if len(grid) != gridWidth*gridWidth*gridWidth {
		return
	}
	r.values = fluid.Slice(grid, gridWidth, r.axis, r.index, r.values)
	r.pixels = RampPixels(r.values, r.gain, r.pixels)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the slice where cam places it on screen.
func (r *SliceRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}
	x, y, w, h := cam.ScreenRect()
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.width), Height: float32(r.width)}
	dst := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawRectangleLines(int32(x), int32(y), int32(w), int32(h), rl.DarkGray)
}

// Axis returns the slice axis.
func (r *SliceRenderer) Axis() fluid.Axis { return r.axis }

// SetAxis changes the slice axis.
func (r *SliceRenderer) SetAxis(a fluid.Axis) { r.axis = a }

// Index returns the slice index along the axis.
func (r *SliceRenderer) Index() int { return r.index }

// SetIndex moves the slice, clamped to the grid.
func (r *SliceRenderer) SetIndex(i int) {
	if i < 0 {
		i = 0
	}
	if r.width > 0 && i > r.width-1 {
		i = r.width - 1
	}
	r.index = i
}

// Gain returns the density multiplier used by the colour ramp.
func (r *SliceRenderer) Gain() float32 { return r.gain }

// SetGain changes the colour ramp multiplier.
func (r *SliceRenderer) SetGain(g float32) { r.gain = g }

// Values returns the last extracted slice.
func (r *SliceRenderer) Values() []float32 { return r.values }

// Unload frees GPU resources.
func (r *SliceRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
