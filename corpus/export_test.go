package corpus

import (
	"math"
	"testing"

	"github.com/pthm-cable/strew/config"
	"github.com/pthm-cable/strew/ingest"
)

func TestExportInterpOneIsOriginal(t *testing.T) {
	// Descriptor frame far from [0,1] so denormalization round-trips
	// are exercised.
	pts := randomPts(40, 111)
	for i := range pts {
		pts[i][0] = pts[i][0]*50 + 10
		pts[i][1] = pts[i][1]*8 - 4
	}
	c := newTestCorpus(t, pts)
	runDistribute(t, c, RunOptions{StopTol: 0.01})

	var frames []BufferFrame
	c.SetExporter(func(_ float64, f []BufferFrame) { frames = f })
	c.Export(1)

	if len(frames) != 1 || frames[0].Buffer != "main" {
		t.Fatalf("frames = %+v", frames)
	}
	for i := range frames[0].X {
		if frames[0].X[i] != pts[i][0] || frames[0].Y[i] != pts[i][1] {
			t.Fatalf("grain %d: export(1) = (%v, %v), want original (%v, %v)",
				i, frames[0].X[i], frames[0].Y[i], pts[i][0], pts[i][1])
		}
	}
}

func TestExportBufferOrderAndSlicing(t *testing.T) {
	tab := ingest.NewTable()
	tab.Append("drums", [][]float64{{0, 0}, {4, 4}})
	tab.Append("voice", [][]float64{{1, 3}, {2, 2}, {3, 1}})
	c, err := New(tab, 0, 1, config.Cfg())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var frames []BufferFrame
	c.SetExporter(func(_ float64, f []BufferFrame) { frames = f })
	c.Export(0)

	if len(frames) != 2 {
		t.Fatalf("got %d frames", len(frames))
	}
	if frames[0].Buffer != "drums" || frames[1].Buffer != "voice" {
		t.Errorf("buffer order = %q, %q", frames[0].Buffer, frames[1].Buffer)
	}
	if len(frames[0].X) != 2 || len(frames[1].X) != 3 {
		t.Errorf("slice lengths = %d, %d", len(frames[0].X), len(frames[1].X))
	}
	// Before any run, live positions are the originals.
	if frames[1].X[2] != 3 || frames[1].Y[2] != 1 {
		t.Errorf("voice[2] = (%v, %v), want (3, 1)", frames[1].X[2], frames[1].Y[2])
	}
}

func TestExportBlend(t *testing.T) {
	c := newTestCorpus(t, randomPts(30, 121))
	orig := c.ScaledPositions()
	runDistribute(t, c, RunOptions{StopTol: 0.01})
	uniformed := c.ScaledPositions()

	var frames []BufferFrame
	c.SetExporter(func(_ float64, f []BufferFrame) { frames = f })
	c.Export(0.25)

	for i := range frames[0].X {
		wantX := uniformed[i].X*0.75 + orig[i].X*0.25
		wantY := uniformed[i].Y*0.75 + orig[i].Y*0.25
		if math.Abs(frames[0].X[i]-wantX) > 1e-12 || math.Abs(frames[0].Y[i]-wantY) > 1e-12 {
			t.Fatalf("grain %d blend = (%v, %v), want (%v, %v)",
				i, frames[0].X[i], frames[0].Y[i], wantX, wantY)
		}
	}
}

func TestSetExporterNil(t *testing.T) {
	c := newTestCorpus(t, randomPts(5, 131))
	c.SetExporter(nil)
	c.Export(0) // must not panic
}
