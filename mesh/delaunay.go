// Package mesh wraps 2D Delaunay triangulation for the relaxation
// engine. The triangulation is ephemeral: the engine rebuilds its
// neighbor graph from the triangle list and discards the rest.
package mesh

import (
	"errors"

	"github.com/fogleman/delaunay"

	"github.com/pthm-cable/strew/geom"
)

// ErrDegenerate is returned when the input points cannot be
// triangulated (fewer than three points, all collinear, or coincident).
var ErrDegenerate = errors.New("mesh: degenerate input")

// Triangle indexes three points of the triangulated set.
type Triangle [3]int32

// Triangulate computes the Delaunay triangulation of pts and returns
// the triangles as index triples. Zero-area triples are never emitted.
func Triangulate(pts []geom.Vec) ([]Triangle, error) {
	if len(pts) < 3 {
		return nil, ErrDegenerate
	}
	dp := make([]delaunay.Point, len(pts))
	for i, p := range pts {
		dp[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	t, err := delaunay.Triangulate(dp)
	if err != nil {
		return nil, ErrDegenerate
	}
	tris := make([]Triangle, 0, len(t.Triangles)/3)
	for i := 0; i+2 < len(t.Triangles); i += 3 {
		tri := Triangle{int32(t.Triangles[i]), int32(t.Triangles[i+1]), int32(t.Triangles[i+2])}
		if area2(pts[tri[0]], pts[tri[1]], pts[tri[2]]) == 0 {
			continue
		}
		tris = append(tris, tri)
	}
	if len(tris) == 0 {
		return nil, ErrDegenerate
	}
	return tris, nil
}

// area2 is twice the signed triangle area.
func area2(a, b, c geom.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
