// Package telemetry computes spacing statistics over layouts and
// writes structured run output as CSV.
package telemetry

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/strew/geom"
)

// SpacingStats summarizes nearest-neighbor spacing of a layout in the
// normalized frame.
type SpacingStats struct {
	N        int     `csv:"n"`
	MeanNN   float64 `csv:"mean_nn"`
	MinNN    float64 `csv:"min_nn"`
	VarNN    float64 `csv:"var_nn"`
	LeftNN   float64 `csv:"left_mean_nn"`  // mean NN over points with x < 0.5
	RightNN  float64 `csv:"right_mean_nn"` // mean NN over points with x >= 0.5
}

// ComputeSpacing computes nearest-neighbor statistics for the given
// positions. Brute force; layouts are a few thousand points at most.
func ComputeSpacing(pts []geom.Vec) SpacingStats {
	n := len(pts)
	if n < 2 {
		return SpacingStats{N: n}
	}
	nn := make([]float64, n)
	for i := range pts {
		best := math.Inf(1)
		for j := range pts {
			if i == j {
				continue
			}
			if d := pts[i].Dist(pts[j]); d < best {
				best = d
			}
		}
		nn[i] = best
	}

	var left, right []float64
	for i, p := range pts {
		if p.X < 0.5 {
			left = append(left, nn[i])
		} else {
			right = append(right, nn[i])
		}
	}
	s := SpacingStats{
		N:      n,
		MeanNN: stat.Mean(nn, nil),
		MinNN:  minOf(nn),
		VarNN:  stat.Variance(nn, nil),
	}
	if len(left) > 0 {
		s.LeftNN = stat.Mean(left, nil)
	}
	if len(right) > 0 {
		s.RightNN = stat.Mean(right, nil)
	}
	return s
}

func minOf(v []float64) float64 {
	best := math.Inf(1)
	for _, x := range v {
		if x < best {
			best = x
		}
	}
	return best
}
