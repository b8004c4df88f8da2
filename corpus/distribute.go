package corpus

import (
	"fmt"
	"math"

	"github.com/pthm-cable/strew/mesh"
)

// RunOptions configures one relaxation run.
type RunOptions struct {
	// ExportPeriod invokes the export hook every N steps; 0 disables
	// intermediate exports.
	ExportPeriod int
	// StopTol is the convergence tolerance relative to the rest
	// length; 0 uses the configured default.
	StopTol float64
}

// Distribute runs the relaxation loop until the largest pending move
// inside the region falls below the stop tolerance. It returns the
// step and triangulation counts; a cancelled run returns the step
// count negated. Grains start from their original positions and end
// with their uniformized snapshot updated.
func (c *Corpus) Distribute(opts RunOptions) (int, int, error) {
	if len(c.grains) < 3 {
		return 0, 0, fmt.Errorf("%w: need at least 3 grains, have %d",
			ErrInvalidConfiguration, len(c.grains))
	}
	stopTol := opts.StopTol
	if stopTol <= 0 {
		stopTol = c.solver.StopTol
	}
	dt := c.solver.DT
	triTol := c.solver.TriTol
	intPres := c.solver.InternalPressure
	k := c.solver.Stiffness

	for i := range c.grains {
		c.restoreOg(int32(i))
	}
	c.preUniformize()
	c.stop.Store(false)

	totCount := 0
	triCount := 0
	needsRetri := true

	for {
		converged := true

		if needsRetri {
			triCount++
			if err := c.retriangulate(); err != nil {
				return totCount, triCount, err
			}
			needsRetri = false
		}

		hScale := c.scalingFactor()

		// Sum repulsive actions. Each unordered edge is visited in
		// both directions; only the far end is pushed per visit, so
		// list symmetry delivers the opposite push on the other visit.
		for i := range c.grains {
			pos := c.posMap.Get(c.grains[i])
			px, py := pos.X, pos.Y
			for _, j := range c.neighbors[i] {
				mx, my := c.midTo(int32(i), j)
				f := k * (intPres*hScale/c.h(mx, my) - c.distTo(int32(i), j))
				if f > 0 {
					c.accumulateRepulsion(j, dt*f, px, py)
				}
			}
		}

		// Integrate, project escapees back onto the boundary, test
		// convergence and triangulation drift.
		for i := range c.grains {
			idx := int32(i)
			sh := c.shapeOf(idx)
			if c.region.Contains(sh) {
				if converged && c.pendingMove(idx)/c.l0 > stopTol {
					converged = false
				}
			} else {
				q := c.region.NearestOnBoundary(sh)
				if math.IsNaN(q.X) || math.IsNaN(q.Y) {
					return totCount, triCount, fmt.Errorf("%w: projecting (%v, %v)",
						ErrRegionUnreachable, sh.X, sh.Y)
				}
				c.scheduleMoveTo(idx, q.X, q.Y)
			}
			c.integrate(idx)
			pos := c.posMap.Get(c.grains[i])
			if math.IsNaN(pos.X) || math.IsInf(pos.X, 0) || math.IsNaN(pos.Y) || math.IsInf(pos.Y, 0) {
				return totCount, triCount, fmt.Errorf("%w: grain %d after step %d",
					ErrNumericalDivergence, i, totCount+1)
			}
			if !needsRetri && c.driftSinceLastTri(idx)/c.l0 > triTol {
				needsRetri = true
			}
		}

		totCount++
		if opts.ExportPeriod != 0 && totCount%opts.ExportPeriod == 0 {
			c.Export(0)
		}
		if c.stop.Load() {
			return -totCount, triCount, nil
		}
		if converged {
			break
		}
	}

	c.resetNeighbors()
	for i := range c.grains {
		c.snapshotUni(int32(i))
	}
	return totCount, triCount, nil
}

// retriangulate rebuilds the neighbor graph as the 1-skeleton of the
// Delaunay triangulation of the current positions and snapshots the
// drift reference.
func (c *Corpus) retriangulate() error {
	tris, err := mesh.Triangulate(c.Positions())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDegenerateInput, err)
	}
	c.resetNeighbors()
	for i := range c.grains {
		c.snapshotPrev(int32(i))
	}
	for _, t := range tris {
		c.link(t[0], t[1])
		c.link(t[0], t[2])
		c.link(t[1], t[2])
	}
	return nil
}

// link adds the undirected edge (a, b), keeping both lists symmetric
// and duplicate-free.
func (c *Corpus) link(a, b int32) {
	for _, n := range c.neighbors[a] {
		if n == b {
			return
		}
	}
	c.neighbors[a] = append(c.neighbors[a], b)
	c.neighbors[b] = append(c.neighbors[b], a)
}

// scalingFactor adjusts the rest length so the spring system budgets
// area to match the integral of 1/h^2 over the edge midpoints.
func (c *Corpus) scalingFactor() float64 {
	var targetArea float64
	nPair := 0
	for i := range c.neighbors {
		for _, j := range c.neighbors[i] {
			nPair++
			mx, my := c.midTo(int32(i), j)
			h := c.h(mx, my)
			targetArea += 1 / (h * h)
		}
	}
	return c.l0 * math.Sqrt(float64(nPair)/targetArea)
}
