package corpus

import (
	"math"
	"sort"

	"github.com/pthm-cable/strew/geom"
)

// Per-grain operations. Grains are addressed by their index into the
// construction-order entity list; neighbor lists hold these indices.

// midTo returns the midpoint between grains i and j.
func (c *Corpus) midTo(i, j int32) (float64, float64) {
	a := c.posMap.Get(c.grains[i])
	b := c.posMap.Get(c.grains[j])
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2
}

// distTo returns the distance between grains i and j.
func (c *Corpus) distTo(i, j int32) float64 {
	a := c.posMap.Get(c.grains[i])
	b := c.posMap.Get(c.grains[j])
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// accumulateRepulsion adds a push of magnitude f on grain i, directed
// away from the source position. The shape cache is refreshed to
// cur + push so the polygon predicates observe the proposed position.
func (c *Corpus) accumulateRepulsion(i int32, f, fromX, fromY float64) {
	e := c.grains[i]
	pos := c.posMap.Get(e)
	push := c.pushMap.Get(e)
	dx, dy := pos.X-fromX, pos.Y-fromY
	d := math.Hypot(dx, dy)
	if d == 0 {
		// Coincident source: push along +x, like atan2(0, 0) = 0.
		dx, dy, d = 1, 0, 1
	}
	push.X += f * dx / d
	push.Y += f * dy / d
	shape := c.shapeMap.Get(e)
	shape.X = pos.X + push.X
	shape.Y = pos.Y + push.Y
}

// shapeOf returns the position the polygon predicates should observe.
func (c *Corpus) shapeOf(i int32) geom.Vec {
	s := c.shapeMap.Get(c.grains[i])
	return geom.Vec{X: s.X, Y: s.Y}
}

// integrate applies the accumulated push, refreshes the descriptor
// mirror and the shape cache, and zeroes the push.
func (c *Corpus) integrate(i int32) {
	e := c.grains[i]
	pos := c.posMap.Get(e)
	push := c.pushMap.Get(e)
	pos.X += push.X
	pos.Y += push.Y
	push.X, push.Y = 0, 0
	den := c.bounds.Denormalize(geom.Vec{X: pos.X, Y: pos.Y})
	scaled := c.scaledMap.Get(e)
	scaled.X, scaled.Y = den.X, den.Y
	shape := c.shapeMap.Get(e)
	shape.X, shape.Y = pos.X, pos.Y
}

// scheduleMoveTo sets the push so that integration lands on (x, y).
func (c *Corpus) scheduleMoveTo(i int32, x, y float64) {
	e := c.grains[i]
	pos := c.posMap.Get(e)
	push := c.pushMap.Get(e)
	push.X = x - pos.X
	push.Y = y - pos.Y
}

// pendingMove returns the magnitude of the accumulated push.
func (c *Corpus) pendingMove(i int32) float64 {
	p := c.pushMap.Get(c.grains[i])
	return math.Hypot(p.X, p.Y)
}

// driftSinceLastTri returns how far grain i moved since the snapshot
// taken at the last retriangulation.
func (c *Corpus) driftSinceLastTri(i int32) float64 {
	e := c.grains[i]
	pos := c.posMap.Get(e)
	a := c.anchorMap.Get(e)
	return math.Hypot(pos.X-a.PrevX, pos.Y-a.PrevY)
}

// snapshotPrev records the current position as the drift reference.
func (c *Corpus) snapshotPrev(i int32) {
	e := c.grains[i]
	pos := c.posMap.Get(e)
	a := c.anchorMap.Get(e)
	a.PrevX, a.PrevY = pos.X, pos.Y
}

// snapshotUni caches the current position as the uniformized layout.
func (c *Corpus) snapshotUni(i int32) {
	e := c.grains[i]
	pos := c.posMap.Get(e)
	a := c.anchorMap.Get(e)
	a.UniX, a.UniY = pos.X, pos.Y
}

// restoreOg resets grain i to its original position.
func (c *Corpus) restoreOg(i int32) {
	e := c.grains[i]
	a := c.anchorMap.Get(e)
	pos := c.posMap.Get(e)
	pos.X, pos.Y = a.OgX, a.OgY
	scaled := c.scaledMap.Get(e)
	scaled.X, scaled.Y = scaled.OgX, scaled.OgY
	shape := c.shapeMap.Get(e)
	shape.X, shape.Y = pos.X, pos.Y
}

// restoreUni resets grain i to its uniformized snapshot.
func (c *Corpus) restoreUni(i int32) {
	e := c.grains[i]
	a := c.anchorMap.Get(e)
	pos := c.posMap.Get(e)
	pos.X, pos.Y = a.UniX, a.UniY
	den := c.bounds.Denormalize(geom.Vec{X: pos.X, Y: pos.Y})
	scaled := c.scaledMap.Get(e)
	scaled.X, scaled.Y = den.X, den.Y
	shape := c.shapeMap.Get(e)
	shape.X, shape.Y = pos.X, pos.Y
}

// resetNeighbors clears all neighbor lists, keeping their capacity.
func (c *Corpus) resetNeighbors() {
	for i := range c.neighbors {
		c.neighbors[i] = c.neighbors[i][:0]
	}
}

// preUniformize spreads the grains over the axis-aligned square
// centered at the region centroid with half-side sqrt(area)/3. Both
// passes sort an index copy so the engine's own grain order is
// untouched for downstream slicing.
func (c *Corpus) preUniformize() {
	n := len(c.grains)
	if n < 2 {
		return
	}
	x1 := c.inboxCenter.X - c.inboxHalf
	x2 := c.inboxCenter.X + c.inboxHalf
	y1 := c.inboxCenter.Y - c.inboxHalf
	y2 := c.inboxCenter.Y + c.inboxHalf

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.posMap.Get(c.grains[order[a]]).X < c.posMap.Get(c.grains[order[b]]).X
	})
	for rank, i := range order {
		c.posMap.Get(c.grains[i]).X = x1 + float64(rank)/float64(n-1)*(x2-x1)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.posMap.Get(c.grains[order[a]]).Y < c.posMap.Get(c.grains[order[b]]).Y
	})
	for rank, i := range order {
		c.posMap.Get(c.grains[i]).Y = y1 + float64(rank)/float64(n-1)*(y2-y1)
	}
	for i := range c.grains {
		shape := c.shapeMap.Get(c.grains[i])
		pos := c.posMap.Get(c.grains[i])
		shape.X, shape.Y = pos.X, pos.Y
	}
}
