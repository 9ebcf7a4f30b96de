package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Simulation.Resolution != 32 {
		t.Errorf("resolution = %d, want 32", cfg.Simulation.Resolution)
	}
	if cfg.Simulation.SolverIterations != 10 {
		t.Errorf("solver_iterations = %d, want 10", cfg.Simulation.SolverIterations)
	}
	if cfg.Recording.BlockWidth != 8 {
		t.Errorf("block_width = %d, want 8", cfg.Recording.BlockWidth)
	}
	if cfg.Derived.DT32 != float32(cfg.Simulation.DT) {
		t.Errorf("DT32 = %v, want %v", cfg.Derived.DT32, cfg.Simulation.DT)
	}
	if len(cfg.Derived.SearchPaths) == 0 || cfg.Derived.SearchPaths[0] != cfg.Recording.Dir {
		t.Errorf("search paths %v should start with recording dir %q", cfg.Derived.SearchPaths, cfg.Recording.Dir)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smoke.yaml")
	overlay := []byte("simulation:\n  resolution: 64\n  advect: false\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Simulation.Resolution != 64 {
		t.Errorf("resolution = %d, want 64", cfg.Simulation.Resolution)
	}
	if cfg.Simulation.Advect {
		t.Error("advect should be overridden to false")
	}
	// Untouched fields keep their defaults
	if !cfg.Simulation.Diffuse {
		t.Error("diffuse should keep its default")
	}
	if cfg.Simulation.Vorticity != 2.5 {
		t.Errorf("vorticity = %v, want 2.5", cfg.Simulation.Vorticity)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"tiny resolution", "simulation:\n  resolution: 2\n"},
		{"zero iterations", "simulation:\n  solver_iterations: 0\n"},
		{"zero block width", "recording:\n  block_width: 0\n"},
		{"bad axis", "viewer:\n  slice_axis: w\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEmitterCell(t *testing.T) {
	e := EmitterConfig{XFrac: 0.5, YOffset: 5, ZFrac: 0.5}
	x, y, z := e.Cell(32)
	if x != 16 || y != 5 || z != 16 {
		t.Errorf("Cell(32) = (%d, %d, %d), want (16, 5, 16)", x, y, z)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Simulation.Buoyancy = 1.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Simulation.Buoyancy != 1.25 {
		t.Errorf("buoyancy = %v, want 1.25", back.Simulation.Buoyancy)
	}
}
