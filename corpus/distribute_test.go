package corpus

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/strew/config"
	"github.com/pthm-cable/strew/geom"
)

func TestDistributeTooFewGrains(t *testing.T) {
	small, err := New(tableOf([][2]float64{{0, 0}, {1, 1}}), 0, 1, config.Cfg())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := small.Distribute(RunOptions{}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("N=2: err = %v, want ErrInvalidConfiguration", err)
	}
	// Three grains whose x and y orderings differ are the smallest
	// valid corpus.
	c := newTestCorpus(t, [][2]float64{{0, 0}, {1, 0.5}, {0.5, 1}})
	runDistribute(t, c, RunOptions{StopTol: 0.01})
}

func TestDistributeGrid(t *testing.T) {
	c := newTestCorpus(t, gridPts())
	steps, tris := runDistribute(t, c, RunOptions{StopTol: 0.005})
	if steps == 0 || tris == 0 {
		t.Fatalf("steps = %d, tris = %d", steps, tris)
	}

	region := c.Region()
	pos := c.Positions()
	input := gridPts()
	var maxDisp, meanDisp float64
	for i, p := range pos {
		if !region.Contains(p) {
			t.Errorf("grain %d at %v left the region", i, p)
		}
		d := p.Dist(geom.Vec{X: input[i][0], Y: input[i][1]})
		meanDisp += d
		if d > maxDisp {
			maxDisp = d
		}
	}
	meanDisp /= float64(len(pos))
	// The regular grid is close to the spring equilibrium, so the run
	// must come back near the input.
	if maxDisp > 0.15 {
		t.Errorf("max displacement = %v, want < 0.15", maxDisp)
	}
	if meanDisp > 0.08 {
		t.Errorf("mean displacement = %v, want < 0.08", meanDisp)
	}
}

func TestDistributeRandom(t *testing.T) {
	pts := randomPts(100, 11)
	c := newTestCorpus(t, pts)
	before := variance(nnDistances(c.Positions()))

	runDistribute(t, c, RunOptions{StopTol: 0.01})

	pos := c.Positions()
	region := c.Region()
	for i, p := range pos {
		if !region.Contains(p) {
			t.Errorf("grain %d at %v outside the unit square", i, p)
		}
	}
	nn := nnDistances(pos)
	for i, d := range nn {
		if d == 0 {
			t.Errorf("grain %d coincides with another grain", i)
		}
	}
	if after := variance(nn); after >= before {
		t.Errorf("NN variance did not decrease: before %v, after %v", before, after)
	}
	// Empirical spacing floor relative to the rest length, with margin.
	floor := 0.4 * c.L0()
	for i, d := range nn {
		if d < floor {
			t.Errorf("grain %d nearest neighbor %v below %v", i, d, floor)
		}
	}
	// I3: the uniformized snapshot matches the final positions.
	for i, e := range c.grains {
		a := c.anchorMap.Get(e)
		p := c.posMap.Get(e)
		if a.UniX != p.X || a.UniY != p.Y {
			t.Fatalf("grain %d uni snapshot out of sync", i)
		}
	}
	// Neighbor lists are cleared after a completed run.
	for i, list := range c.neighbors {
		if len(list) != 0 {
			t.Fatalf("grain %d kept %d neighbors after the run", i, len(list))
		}
	}
}

func TestDistributeTriangleRegion(t *testing.T) {
	c := newTestCorpus(t, randomPts(50, 21))
	triangle := geom.NewPolygon([]geom.Vec{{0.1, 0.1}, {0.9, 0.1}, {0.5, 0.9}})
	if err := c.SetRegion(triangle, true); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}
	runDistribute(t, c, RunOptions{StopTol: 0.01})
	for i, p := range c.Positions() {
		if !triangle.Contains(p) {
			t.Errorf("grain %d at %v outside the triangle", i, p)
		}
	}
}

func TestDistributeStop(t *testing.T) {
	c := newTestCorpus(t, randomPts(100, 31))
	exports := 0
	c.SetExporter(func(float64, []BufferFrame) {
		exports++
		if exports == 5 {
			c.Stop()
		}
	})
	steps, tris, err := c.Distribute(RunOptions{ExportPeriod: 1})
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if steps != -5 {
		t.Errorf("steps = %d, want -5 (cancelled at the fifth boundary)", steps)
	}
	if tris < 1 {
		t.Errorf("tris = %d", tris)
	}
	// The grains stay consistent after a cancelled run: inside the
	// region, neighbor graph still the last triangulation's skeleton.
	region := c.Region()
	for i, p := range c.Positions() {
		if !region.Contains(p) {
			t.Errorf("grain %d at %v outside after stop", i, p)
		}
	}
	assertNeighborInvariants(t, c)
	populated := false
	for _, list := range c.neighbors {
		if len(list) > 0 {
			populated = true
			break
		}
	}
	if !populated {
		t.Error("neighbor graph empty after a cancelled run")
	}
}

func TestDistributeDensityGradient(t *testing.T) {
	c := newTestCorpus(t, randomPts(100, 41))
	if err := c.SetDensity(func(x, y float64) float64 { return 1 + 4*x }); err != nil {
		t.Fatalf("SetDensity: %v", err)
	}
	runDistribute(t, c, RunOptions{StopTol: 0.01})

	pos := c.Positions()
	nn := nnDistances(pos)
	var left, right []float64
	for i, p := range pos {
		if p.X < 0.5 {
			left = append(left, nn[i])
		} else {
			right = append(right, nn[i])
		}
	}
	if len(left) == 0 || len(right) == 0 {
		t.Fatal("degenerate split")
	}
	mean := func(v []float64) float64 {
		var s float64
		for _, x := range v {
			s += x
		}
		return s / float64(len(v))
	}
	if mean(right) >= mean(left) {
		t.Errorf("h = 1+4x must pack the right half tighter: left %v, right %v",
			mean(left), mean(right))
	}
}

func TestDistributeDeterministic(t *testing.T) {
	pts := randomPts(60, 51)
	c := newTestCorpus(t, pts)
	steps1, tris1 := runDistribute(t, c, RunOptions{StopTol: 0.01})
	first := c.Positions()

	steps2, tris2 := runDistribute(t, c, RunOptions{StopTol: 0.01})
	second := c.Positions()

	if steps1 != steps2 || tris1 != tris2 {
		t.Errorf("reruns differ: (%d, %d) vs (%d, %d)", steps1, tris1, steps2, tris2)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("grain %d differs between identical runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestDistributeExportPeriod(t *testing.T) {
	c := newTestCorpus(t, randomPts(30, 61))
	exports := 0
	c.SetExporter(func(float64, []BufferFrame) { exports++ })
	steps, _ := runDistribute(t, c, RunOptions{ExportPeriod: 3, StopTol: 0.01})
	if want := steps / 3; exports != want {
		t.Errorf("exports = %d, want %d for %d steps", exports, want, steps)
	}
}

func TestPreUniformizeSpread(t *testing.T) {
	c := newTestCorpus(t, randomPts(16, 71))
	for i := range c.grains {
		c.restoreOg(int32(i))
	}
	c.preUniformize()
	// All grains land in the inner box centered at the region centroid
	// with half-side sqrt(area)/3, with distinct ranks along x.
	lo, hi := 0.5-1.0/3, 0.5+1.0/3
	seenX := make(map[float64]bool)
	for _, p := range c.Positions() {
		if p.X < lo-1e-12 || p.X > hi+1e-12 || p.Y < lo-1e-12 || p.Y > hi+1e-12 {
			t.Errorf("grain at %v outside the inner box [%v, %v]^2", p, lo, hi)
		}
		if seenX[p.X] {
			t.Errorf("duplicate x rank %v", p.X)
		}
		seenX[p.X] = true
	}
}

func TestRestLengthFormula(t *testing.T) {
	tests := []struct {
		n    int
		area float64
	}{
		{3, 1}, {100, 1}, {50, 0.32}, {1000, 2},
	}
	for _, tt := range tests {
		got := restLength(tt.n, tt.area)
		want := math.Sqrt(2 / (math.Sqrt(3) * float64(tt.n) / tt.area))
		if math.Abs(got-want) > 1e-15 {
			t.Errorf("restLength(%d, %v) = %v, want %v", tt.n, tt.area, got, want)
		}
	}
}
