package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"dt", cfg.Solver.DT, 0.2},
		{"stop_tol", cfg.Solver.StopTol, 0.001},
		{"tri_tol", cfg.Solver.TriTol, 0.1},
		{"internal_pressure", cfg.Solver.InternalPressure, 1.2},
		{"stiffness", cfg.Solver.Stiffness, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
	if cfg.Preview.Width <= 0 || cfg.Preview.Height <= 0 {
		t.Errorf("preview dimensions not set: %+v", cfg.Preview)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	content := "solver:\n  stop_tol: 0.01\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Solver.StopTol != 0.01 {
		t.Errorf("stop_tol = %v, want override 0.01", cfg.Solver.StopTol)
	}
	// Untouched fields keep their embedded defaults.
	if cfg.Solver.DT != 0.2 {
		t.Errorf("dt = %v, want default 0.2", cfg.Solver.DT)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
