// Interactive layout preview - watch the relaxation spread a corpus
// inside the unit square, stop it mid-run, blend toward the original
// layout, and place Gaussian attractors with the mouse.
//
// Usage: go run ./cmd/preview [-n 400] [table.csv ...]
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/strew/config"
	"github.com/pthm-cable/strew/corpus"
	"github.com/pthm-cable/strew/geom"
	"github.com/pthm-cable/strew/ingest"
)

var (
	configPath = flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	nDemo      = flag.Int("n", 400, "Demo grain count when no CSV is given")
	seed       = flag.Int64("seed", 42, "Demo data seed")
	xcol       = flag.Int("xcol", 0, "Descriptor column for x")
	ycol       = flag.Int("ycol", 1, "Descriptor column for y")
)

func main() {
	flag.Parse()
	if err := config.Init(*configPath); err != nil {
		log.Fatal(err)
	}
	cfg := config.Cfg()

	table, err := loadTable()
	if err != nil {
		log.Fatal(err)
	}
	c, err := corpus.New(table, *xcol, *ycol, cfg)
	if err != nil {
		log.Fatal(err)
	}

	var (
		mu       sync.Mutex
		snapshot []rl.Vector2
		status   = fmt.Sprintf("%d grains", c.N())
		running  atomic.Bool
	)
	bounds := c.Bounds()
	// The hook runs on whichever goroutine drives the engine; it only
	// publishes value copies, never grain references.
	c.SetExporter(func(_ float64, frames []corpus.BufferFrame) {
		pts := make([]rl.Vector2, 0, c.N())
		for _, fr := range frames {
			for i := range fr.X {
				p := bounds.Normalize(geom.Vec{X: fr.X[i], Y: fr.Y[i]})
				pts = append(pts, rl.Vector2{X: float32(p.X), Y: float32(p.Y)})
			}
		}
		mu.Lock()
		snapshot = pts
		mu.Unlock()
	})
	c.Export(0)

	winW := int32(cfg.Preview.Width)
	winH := int32(cfg.Preview.Height)
	rl.InitWindow(winW, winH, "strew preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	canvas := float32(winH - 40)
	canvasX, canvasY := float32(20), float32(20)
	panelX := canvasX + canvas + 20
	radius := float32(cfg.Preview.PointRadius)

	var interp float32
	var gaussians []corpus.Gaussian

	for !rl.WindowShouldClose() {
		// Place an attractor with the mouse while idle.
		if !running.Load() && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			m := rl.GetMousePosition()
			if m.X >= canvasX && m.X < canvasX+canvas && m.Y >= canvasY && m.Y < canvasY+canvas {
				gaussians = append(gaussians, corpus.Gaussian{
					MX:     float64((m.X - canvasX) / canvas),
					MY:     float64(1 - (m.Y-canvasY)/canvas),
					SigmaX: 0.1, SigmaY: 0.1,
				})
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawRectangleLines(int32(canvasX), int32(canvasY), int32(canvas), int32(canvas), rl.LightGray)
		mu.Lock()
		for _, p := range snapshot {
			rl.DrawCircleV(rl.Vector2{
				X: canvasX + p.X*canvas,
				Y: canvasY + (1-p.Y)*canvas,
			}, radius, rl.DarkBlue)
		}
		st := status
		mu.Unlock()
		for _, g := range gaussians {
			rl.DrawCircleLines(
				int32(canvasX+float32(g.MX)*canvas),
				int32(canvasY+(1-float32(g.MY))*canvas),
				float32(g.SigmaX)*canvas, rl.Maroon)
		}

		panelY := canvasY
		rl.DrawText("strew", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35
		rl.DrawText(st, int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 30

		if !running.Load() {
			if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Distribute") {
				running.Store(true)
				go func() {
					steps, tris, err := c.Distribute(corpus.RunOptions{ExportPeriod: 2})
					mu.Lock()
					switch {
					case err != nil:
						status = err.Error()
					case steps < 0:
						status = fmt.Sprintf("stopped: %d steps, %d tris", -steps, tris)
					default:
						status = fmt.Sprintf("converged: %d steps, %d tris", steps, tris)
					}
					mu.Unlock()
					c.Export(0)
					running.Store(false)
				}()
			}
		} else if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Stop") {
			c.Stop()
		}
		panelY += 45

		// Interp slider and attractors only act on an idle engine; the
		// worker owns the grains while a run is in progress.
		if !running.Load() {
			rl.DrawText("Interpolation (0 = uniform, 1 = original)", int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			newInterp := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: 160, Height: 20},
				"0", "1", interp, 0, 1,
			)
			if newInterp != interp {
				interp = newInterp
				c.Export(float64(interp))
			}
			panelY += 35

			if len(gaussians) > 0 {
				if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Attract") {
					if err := c.SimpleAttractors(gaussians, false); err != nil {
						mu.Lock()
						status = err.Error()
						mu.Unlock()
					}
				}
				panelY += 40
				if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset") {
					gaussians = gaussians[:0]
					if err := c.SimpleAttractors(nil, true); err != nil {
						mu.Lock()
						status = err.Error()
						mu.Unlock()
					}
				}
				panelY += 40
			}
			rl.DrawText("Click the canvas to place an attractor", int32(panelX), int32(winH-30), 12, rl.LightGray)
		}

		rl.EndDrawing()
	}
}

// loadTable reads the CSV arguments, or fabricates a clustered demo
// corpus so the tool works standalone.
func loadTable() (*ingest.Table, error) {
	if flag.NArg() > 0 {
		return ingest.LoadCSV(flag.Args()...)
	}
	rng := rand.New(rand.NewSource(*seed))
	rows := make([][]float64, *nDemo)
	for i := range rows {
		// Two lobes so the original layout is visibly non-uniform.
		cx, cy := 0.3, 0.3
		if i%2 == 0 {
			cx, cy = 0.7, 0.6
		}
		rows[i] = []float64{
			cx + rng.NormFloat64()*0.12,
			cy + rng.NormFloat64()*0.12,
		}
	}
	t := ingest.NewTable()
	t.Append("demo", rows)
	return t, nil
}
