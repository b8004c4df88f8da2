package corpus

// BufferFrame is one buffer's positions in the descriptor frame,
// sliced out of the engine's concatenation in buffer order.
type BufferFrame struct {
	Buffer string
	X, Y   []float64
}

// Exporter observes layouts produced by the engine. It is called
// synchronously from the engine's goroutine. Each call receives freshly
// allocated frames holding copies of the positions, so the callback may
// keep them after it returns.
type Exporter func(interp float64, frames []BufferFrame)

// SetExporter installs the export callback. A nil exporter restores
// the no-op default.
func (c *Corpus) SetExporter(fn Exporter) {
	if fn == nil {
		fn = func(float64, []BufferFrame) {}
	}
	c.exporter = fn
}

// Export invokes the callback with the live positions blended toward
// the originals: scaled*(1-interp) + scaledOg*interp, per buffer, in
// buffer order. interp = 0 is the fully uniformized layout, 1 the
// original one.
func (c *Corpus) Export(interp float64) {
	buffers := c.table.Buffers()
	frames := make([]BufferFrame, len(buffers))
	idx := 0
	for bi, buf := range buffers {
		n := len(buf.Rows)
		fr := BufferFrame{
			Buffer: buf.Name,
			X:      make([]float64, n),
			Y:      make([]float64, n),
		}
		for i := 0; i < n; i++ {
			s := c.scaledMap.Get(c.grains[idx])
			fr.X[i] = s.X*(1-interp) + s.OgX*interp
			fr.Y[i] = s.Y*(1-interp) + s.OgY*interp
			idx++
		}
		frames[bi] = fr
	}
	c.exporter(interp, frames)
}
