package corpus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Gaussian parameterizes one component of an attractor mixture: a
// rotated 2D Gaussian centered at (MX, MY) with axis spreads SigmaX,
// SigmaY and rotation Theta.
type Gaussian struct {
	MX, MY         float64
	SigmaX, SigmaY float64
	Theta          float64
}

func (g Gaussian) eval(x, y float64) float64 {
	sin, cos := math.Sincos(g.Theta)
	sx2 := 2 * g.SigmaX * g.SigmaX
	sy2 := 2 * g.SigmaY * g.SigmaY
	a := cos*cos/sx2 + sin*sin/sy2
	b := -math.Sin(2*g.Theta)/(2*sx2) + math.Sin(2*g.Theta)/(2*sy2)
	cc := sin*sin/sx2 + cos*cos/sy2
	dx, dy := x-g.MX, y-g.MY
	return math.Exp(-a*dx*dx - 2*b*dx*dy - cc*dy*dy)
}

// SimpleAttractors restores the uniformized layout and bends it toward
// the density peaks of the Gaussian mixture. With reset set (or an
// empty mixture) it only restores and exports. The run starts from the
// uni snapshot, never from live positions, so attractor calls are
// idempotent.
func (c *Corpus) SimpleAttractors(gaussians []Gaussian, reset bool) error {
	if len(c.grains) == 0 {
		return fmt.Errorf("%w: empty corpus", ErrInvalidConfiguration)
	}
	for i := range c.grains {
		c.restoreUni(int32(i))
	}
	if reset || len(gaussians) == 0 {
		c.Export(0)
		return nil
	}

	ng := 2 * int(math.Ceil(math.Sqrt(float64(len(c.grains)))))
	density := make([]float64, ng*ng)
	buf := make([]float64, ng*ng)
	for _, g := range gaussians {
		for row := 0; row < ng; row++ {
			y := float64(row) / float64(ng-1)
			for col := 0; col < ng; col++ {
				x := float64(col) / float64(ng-1)
				buf[row*ng+col] = g.eval(x, y)
			}
		}
		// Each component is normalized to its own peak before summing.
		floats.Scale(1/floats.Max(buf), buf)
		floats.Add(density, buf)
	}

	lo, hi := floats.Min(density), floats.Max(density)
	if hi-lo < 1e-12 {
		// Flat mixture: no gradient to follow.
		c.Export(0)
		return nil
	}
	floats.AddConst(-lo, density)
	floats.Scale(c.l0/(hi-lo), density)

	gradX, gradY := gridGradient(density, ng)

	// Sample the field and both gradient components at each grain,
	// then displace along the normalized gradient, weighted by the
	// local density.
	n := len(c.grains)
	den := make([]float64, n)
	gx := make([]float64, n)
	gy := make([]float64, n)
	norm := make([]float64, n)
	for i, e := range c.grains {
		p := c.posMap.Get(e)
		den[i] = bilinear(density, ng, p.X, p.Y)
		gx[i] = bilinear(gradX, ng, p.X, p.Y)
		gy[i] = bilinear(gradY, ng, p.X, p.Y)
		norm[i] = math.Hypot(gx[i], gy[i])
	}
	eps := floats.Max(norm) / 1000
	for i := range c.grains {
		idx := int32(i)
		p := c.posMap.Get(c.grains[i])
		c.scheduleMoveTo(idx,
			p.X+den[i]*gx[i]/(norm[i]+eps),
			p.Y+den[i]*gy[i]/(norm[i]+eps))
		c.integrate(idx)
	}
	c.Export(0)
	return nil
}

// gridGradient computes central-difference gradients of a square grid
// in index units, one-sided at the borders.
func gridGradient(grid []float64, ng int) (gradX, gradY []float64) {
	gradX = make([]float64, ng*ng)
	gradY = make([]float64, ng*ng)
	for row := 0; row < ng; row++ {
		for col := 0; col < ng; col++ {
			i := row*ng + col
			switch {
			case col == 0:
				gradX[i] = grid[i+1] - grid[i]
			case col == ng-1:
				gradX[i] = grid[i] - grid[i-1]
			default:
				gradX[i] = (grid[i+1] - grid[i-1]) / 2
			}
			switch {
			case row == 0:
				gradY[i] = grid[i+ng] - grid[i]
			case row == ng-1:
				gradY[i] = grid[i] - grid[i-ng]
			default:
				gradY[i] = (grid[i+ng] - grid[i-ng]) / 2
			}
		}
	}
	return gradX, gradY
}

// bilinear samples a square grid spanning [0,1]^2 at (x, y), clamping
// to the border cells outside the span.
func bilinear(grid []float64, ng int, x, y float64) float64 {
	fx := x * float64(ng-1)
	fy := y * float64(ng-1)
	if fx < 0 {
		fx = 0
	} else if fx > float64(ng-1) {
		fx = float64(ng - 1)
	}
	if fy < 0 {
		fy = 0
	} else if fy > float64(ng-1) {
		fy = float64(ng - 1)
	}
	x0 := int(fx)
	y0 := int(fy)
	if x0 > ng-2 {
		x0 = ng - 2
	}
	if y0 > ng-2 {
		y0 = ng - 2
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)
	v00 := grid[y0*ng+x0]
	v10 := grid[y0*ng+x0+1]
	v01 := grid[(y0+1)*ng+x0]
	v11 := grid[(y0+1)*ng+x0+1]
	return v00*(1-tx)*(1-ty) + v10*tx*(1-ty) + v01*(1-tx)*ty + v11*tx*ty
}
