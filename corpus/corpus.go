// Package corpus implements the uniformization engine: it owns the
// grains of a descriptor table projected onto two columns and
// redistributes them inside a polygonal region by relaxing a
// repulsive spring network over a continuously rebuilt Delaunay
// topology.
package corpus

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/strew/components"
	"github.com/pthm-cable/strew/config"
	"github.com/pthm-cable/strew/geom"
	"github.com/pthm-cable/strew/ingest"
)

// DensityFunc is a strictly positive scalar field over the normalized
// plane. Larger values mean denser local spacing. It is sampled at
// edge midpoints on every step, so it must be cheap.
type DensityFunc func(x, y float64) float64

// uniformDensity is the default h == 1 field.
func uniformDensity(x, y float64) float64 { return 1 }

// Corpus owns the grains, the active region, the density field and
// the spring rest length. All engine math runs in the normalized
// frame; the descriptor-frame mirror of each grain is kept in sync on
// integration.
type Corpus struct {
	world  *ecs.World
	mapper *ecs.Map5[components.Position, components.Push, components.Shape, components.Anchor, components.Scaled]

	posMap    *ecs.Map1[components.Position]
	pushMap   *ecs.Map1[components.Push]
	shapeMap  *ecs.Map1[components.Shape]
	anchorMap *ecs.Map1[components.Anchor]
	scaledMap *ecs.Map1[components.Scaled]

	// grains is the construction-order entity list. Iteration order
	// over grains is this order, stable across steps and runs.
	grains []ecs.Entity

	// neighbors holds the 1-skeleton of the last triangulation as
	// index lists into grains. Rebuilt from scratch, never patched.
	neighbors [][]int32

	table      *ingest.Table
	xcol, ycol int

	bounds      geom.Bounds
	region      geom.Polygon
	inboxCenter geom.Vec
	inboxHalf   float64

	h  DensityFunc
	l0 float64

	solver   config.SolverConfig
	exporter Exporter
	stop     atomic.Bool
}

// New builds an engine over the given table, projecting rows onto the
// two descriptor columns. The region defaults to the unit square in
// the normalized frame.
func New(table *ingest.Table, xcol, ycol int, cfg *config.Config) (*Corpus, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidConfiguration)
	}
	world := ecs.NewWorld()
	c := &Corpus{
		world:     world,
		mapper:    ecs.NewMap5[components.Position, components.Push, components.Shape, components.Anchor, components.Scaled](world),
		posMap:    ecs.NewMap1[components.Position](world),
		pushMap:   ecs.NewMap1[components.Push](world),
		shapeMap:  ecs.NewMap1[components.Shape](world),
		anchorMap: ecs.NewMap1[components.Anchor](world),
		scaledMap: ecs.NewMap1[components.Scaled](world),
		table:     table,
		h:         uniformDensity,
		solver:    cfg.Solver,
		exporter:  func(float64, []BufferFrame) {},
	}
	if err := c.SetCols(xcol, ycol, true); err != nil {
		return nil, err
	}
	return c, nil
}

// SetCols selects the two descriptor columns, rebuilds bounds and
// grain state, and, if resetRegion is set, resets the region to the
// unit square.
func (c *Corpus) SetCols(xcol, ycol int, resetRegion bool) error {
	cols := c.table.Cols()
	if xcol < 0 || xcol >= cols || ycol < 0 || ycol >= cols {
		return fmt.Errorf("%w: columns (%d, %d) out of range for width %d",
			ErrInvalidConfiguration, xcol, ycol, cols)
	}
	bounds, err := columnBounds(c.table, xcol, ycol)
	if err != nil {
		return err
	}
	c.xcol, c.ycol = xcol, ycol
	c.bounds = bounds

	i := 0
	for _, buf := range c.table.Buffers() {
		for _, row := range buf.Rows {
			og := geom.Vec{X: row[xcol], Y: row[ycol]}
			norm := bounds.Normalize(og)
			pos := components.Position{X: norm.X, Y: norm.Y}
			push := components.Push{}
			shape := components.Shape{X: norm.X, Y: norm.Y}
			anchor := components.Anchor{
				OgX: norm.X, OgY: norm.Y,
				UniX: norm.X, UniY: norm.Y,
				PrevX: norm.X, PrevY: norm.Y,
			}
			scaled := components.Scaled{X: og.X, Y: og.Y, OgX: og.X, OgY: og.Y}
			if i < len(c.grains) {
				e := c.grains[i]
				*c.posMap.Get(e) = pos
				*c.pushMap.Get(e) = push
				*c.shapeMap.Get(e) = shape
				*c.anchorMap.Get(e) = anchor
				*c.scaledMap.Get(e) = scaled
			} else {
				c.grains = append(c.grains, c.mapper.NewEntity(&pos, &push, &shape, &anchor, &scaled))
			}
			i++
		}
	}
	c.neighbors = make([][]int32, len(c.grains))

	if resetRegion || c.region.Vertices() == nil {
		return c.SetRegion(geom.UnitSquare(), true)
	}
	c.l0 = restLength(len(c.grains), c.region.Area())
	return nil
}

// SetRegion installs the polygon the grains must fill. Vertices are
// given in the descriptor frame unless normalized is set. The region
// may be replaced between runs but not during a step.
func (c *Corpus) SetRegion(region geom.Polygon, normalized bool) error {
	if len(region.Vertices()) < 3 {
		return fmt.Errorf("%w: region needs at least 3 vertices", ErrInvalidConfiguration)
	}
	if !normalized {
		region = region.Scaled(c.bounds)
	}
	area := region.Area()
	if area <= 0 {
		return fmt.Errorf("%w: region area must be positive", ErrInvalidConfiguration)
	}
	c.region = region
	c.inboxCenter = region.Centroid()
	c.inboxHalf = math.Sqrt(area) / 3
	c.l0 = restLength(len(c.grains), area)
	return nil
}

// SetDensity installs the density field h(x, y). A nil function
// restores the uniform default. Positivity is probed on a coarse grid
// before the field is accepted.
func (c *Corpus) SetDensity(h DensityFunc) error {
	if h == nil {
		c.h = uniformDensity
		return nil
	}
	const probe = 11
	for i := 0; i < probe; i++ {
		for j := 0; j < probe; j++ {
			x := float64(i) / (probe - 1)
			y := float64(j) / (probe - 1)
			if v := h(x, y); !(v > 0) || math.IsInf(v, 1) {
				return fmt.Errorf("%w: density must be positive and finite, got %v at (%.2f, %.2f)",
					ErrInvalidConfiguration, v, x, y)
			}
		}
	}
	c.h = h
	return nil
}

// Stop signals a running Distribute to return at the next step
// boundary. Safe to call from any goroutine.
func (c *Corpus) Stop() { c.stop.Store(true) }

// N returns the grain count.
func (c *Corpus) N() int { return len(c.grains) }

// L0 returns the current rest length of the spring network.
func (c *Corpus) L0() float64 { return c.l0 }

// Bounds returns the descriptor-frame bounding box of the selected
// columns.
func (c *Corpus) Bounds() geom.Bounds { return c.bounds }

// Region returns the active region in the normalized frame.
func (c *Corpus) Region() geom.Polygon { return c.region }

// Positions returns a copy of the live normalized positions in
// construction order.
func (c *Corpus) Positions() []geom.Vec {
	out := make([]geom.Vec, len(c.grains))
	for i, e := range c.grains {
		p := c.posMap.Get(e)
		out[i] = geom.Vec{X: p.X, Y: p.Y}
	}
	return out
}

// ScaledPositions returns a copy of the live descriptor-frame
// positions in construction order.
func (c *Corpus) ScaledPositions() []geom.Vec {
	out := make([]geom.Vec, len(c.grains))
	for i, e := range c.grains {
		s := c.scaledMap.Get(e)
		out[i] = geom.Vec{X: s.X, Y: s.Y}
	}
	return out
}

// restLength is the target spacing of a uniform triangular lattice of
// n points filling area a.
func restLength(n int, a float64) float64 {
	return math.Sqrt(2 / (math.Sqrt(3) * float64(n) / a))
}

func columnBounds(t *ingest.Table, xcol, ycol int) (geom.Bounds, error) {
	b := geom.Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for _, buf := range t.Buffers() {
		for _, row := range buf.Rows {
			b.XMin = math.Min(b.XMin, row[xcol])
			b.XMax = math.Max(b.XMax, row[xcol])
			b.YMin = math.Min(b.YMin, row[ycol])
			b.YMax = math.Max(b.YMax, row[ycol])
		}
	}
	if b.Degenerate() {
		return b, fmt.Errorf("%w: degenerate column bounds", ErrInvalidConfiguration)
	}
	return b, nil
}
