package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsSlice(t *testing.T) {
	cam := New(1280, 800, 32, 32, 8)

	if cam.X != 16 || cam.Y != 16 {
		t.Errorf("expected camera at (16, 16), got (%f, %f)", cam.X, cam.Y)
	}
	// Height is the tighter axis: 800/32
	if cam.Zoom != 25 || cam.MinZoom != 25 {
		t.Errorf("expected fit zoom 25, got zoom=%f min=%f", cam.Zoom, cam.MinZoom)
	}
	if cam.MaxZoom != 25 {
		t.Errorf("max zoom below fit zoom should be raised, got %f", cam.MaxZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 800, 32, 32, 100)

	sx, sy := cam.WorldToScreen(16, 16)
	if !near(sx, 640) || !near(sy, 400) {
		t.Errorf("expected screen center (640, 400), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 800, 32, 32, 100)
	cam.ZoomBy(1.7)
	cam.Pan(55, -20)

	testCases := []struct{ sx, sy float32 }{
		{640, 400},
		{100, 100},
		{1200, 600},
	}
	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToSlice(t *testing.T) {
	cam := New(1280, 800, 32, 32, 100)

	cam.Pan(-1e6, 1e6)
	if cam.X != 0 || cam.Y != 32 {
		t.Errorf("expected centre clamped to (0, 32), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 800, 32, 32, 100)

	cam.SetZoom(1000)
	if cam.Zoom != 100 {
		t.Errorf("expected zoom clamped to 100, got %f", cam.Zoom)
	}
	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to min %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestScreenRectAndContains(t *testing.T) {
	cam := New(800, 800, 32, 32, 100)

	x, y, w, h := cam.ScreenRect()
	if x != 0 || y != 0 || w != 800 || h != 800 {
		t.Errorf("fitted slice should fill the viewport, got (%f, %f, %f, %f)", x, y, w, h)
	}

	wx, wy := cam.ScreenToWorld(799, 0)
	if !cam.Contains(wx, wy) {
		t.Errorf("(%f, %f) should be inside the slice", wx, wy)
	}
	if cam.Contains(32, 5) || cam.Contains(-0.1, 5) {
		t.Error("points on or past the far edge are outside")
	}
}

func TestResizeRaisesMinZoom(t *testing.T) {
	cam := New(320, 320, 32, 32, 100)
	cam.Resize(640, 640)

	if cam.MinZoom != 20 {
		t.Errorf("expected min zoom 20 after resize, got %f", cam.MinZoom)
	}
	if cam.Zoom != 20 {
		t.Errorf("zoom should follow the new minimum, got %f", cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 800, 32, 32, 100)
	cam.Pan(100, 100)
	cam.ZoomBy(3)
	cam.Reset()

	if cam.X != 16 || cam.Y != 16 || cam.Zoom != cam.MinZoom {
		t.Errorf("expected reset to centre and fit, got (%f, %f) zoom %f", cam.X, cam.Y, cam.Zoom)
	}
}
