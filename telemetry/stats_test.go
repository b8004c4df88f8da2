package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/strew/geom"
)

func TestComputeSpacingGrid(t *testing.T) {
	// 3x3 unit-spaced grid scaled into [0,1]: nearest neighbor is
	// always 0.5 away.
	var pts []geom.Vec
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			pts = append(pts, geom.Vec{X: float64(i) / 2, Y: float64(j) / 2})
		}
	}
	s := ComputeSpacing(pts)
	if s.N != 9 {
		t.Fatalf("N = %d", s.N)
	}
	if math.Abs(s.MeanNN-0.5) > 1e-12 || math.Abs(s.MinNN-0.5) > 1e-12 {
		t.Errorf("mean = %v, min = %v, want 0.5", s.MeanNN, s.MinNN)
	}
	if s.VarNN > 1e-12 {
		t.Errorf("variance = %v, want 0 for a regular grid", s.VarNN)
	}
}

func TestComputeSpacingHalves(t *testing.T) {
	// Dense cluster on the right, sparse pair on the left.
	pts := []geom.Vec{
		{0.1, 0.1}, {0.1, 0.9},
		{0.8, 0.5}, {0.82, 0.5}, {0.8, 0.52}, {0.82, 0.52},
	}
	s := ComputeSpacing(pts)
	if s.RightNN >= s.LeftNN {
		t.Errorf("right mean NN %v should be below left mean NN %v", s.RightNN, s.LeftNN)
	}
}

func TestComputeSpacingSmall(t *testing.T) {
	if s := ComputeSpacing(nil); s.N != 0 {
		t.Errorf("empty input: %+v", s)
	}
	if s := ComputeSpacing([]geom.Vec{{0.5, 0.5}}); s.N != 1 || s.MeanNN != 0 {
		t.Errorf("single point: %+v", s)
	}
}
