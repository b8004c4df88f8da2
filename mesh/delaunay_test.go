package mesh

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/strew/geom"
)

func TestTriangulateSquare(t *testing.T) {
	pts := []geom.Vec{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tris, err := Triangulate(pts)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
	seen := make(map[int32]bool)
	for _, tri := range tris {
		for _, i := range tri {
			if i < 0 || int(i) >= len(pts) {
				t.Fatalf("index %d out of range", i)
			}
			seen[i] = true
		}
	}
	if len(seen) != 4 {
		t.Errorf("triangulation uses %d of 4 points", len(seen))
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []geom.Vec
	}{
		{"too few points", []geom.Vec{{0, 0}, {1, 1}}},
		{"collinear", []geom.Vec{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"coincident", []geom.Vec{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Triangulate(tt.pts); !errors.Is(err, ErrDegenerate) {
				t.Errorf("err = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestTriangulateRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := make([]geom.Vec, 50)
	for i := range pts {
		pts[i] = geom.Vec{X: rng.Float64(), Y: rng.Float64()}
	}
	tris, err := Triangulate(pts)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	// A Delaunay triangulation of n points has at most 2n-5 triangles,
	// and none of the emitted triples may be degenerate.
	if len(tris) == 0 || len(tris) > 2*len(pts)-5 {
		t.Fatalf("implausible triangle count %d for %d points", len(tris), len(pts))
	}
	for _, tri := range tris {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			t.Fatalf("triangle %v repeats an index", tri)
		}
		if area2(pts[tri[0]], pts[tri[1]], pts[tri[2]]) == 0 {
			t.Fatalf("triangle %v has zero area", tri)
		}
	}
}
