package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/session"
)

// pollInput reads the number-row commands and the view controls.
func (v *Viewer) pollInput() session.InputState {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}

	in := session.InputState{
		ToggleMouseLock: rl.IsKeyPressed(rl.KeyZero),
		ToggleStepMode:  rl.IsKeyPressed(rl.KeyOne),
		StepOnce:        rl.IsKeyPressed(rl.KeyTwo),
		StepHeld:        rl.IsKeyDown(rl.KeyTwo),
		RandomCloud:     rl.IsKeyPressed(rl.KeyFour),
		ClearDensity:    rl.IsKeyPressed(rl.KeyFive),
		NextPattern:     rl.IsKeyPressed(rl.KeyNine),
	}
	if in.ToggleMouseLock {
		v.setMouseLock(!v.mouseLocked)
	}

	// Slice navigation
	if rl.IsKeyPressed(rl.KeyPageUp) || rl.IsKeyPressed(rl.KeyRightBracket) {
		v.slice.SetIndex(v.slice.Index() + 1)
	}
	if rl.IsKeyPressed(rl.KeyPageDown) || rl.IsKeyPressed(rl.KeyLeftBracket) {
		v.slice.SetIndex(v.slice.Index() - 1)
	}
	if rl.IsKeyPressed(rl.KeyA) {
		v.slice.SetAxis(v.slice.Axis().Next())
	}

	v.handleCameraInput()
	return in
}

// setMouseLock captures the cursor; while locked mouse motion pans the slice.
func (v *Viewer) setMouseLock(locked bool) {
	v.mouseLocked = locked
	if locked {
		rl.DisableCursor()
	} else {
		rl.EnableCursor()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.layoutPanels()
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / v.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if v.mouseLocked {
		delta := rl.GetMouseDelta()
		v.camera.Pan(-delta.X/v.camera.Zoom, -delta.Y/v.camera.Zoom)
	}

	mouse := rl.GetMousePosition()
	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 && !v.controls.Contains(mouse.X, mouse.Y) {
		v.camera.ZoomBy(1.0 + wheelMove*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}
