// Command strew ingests descriptor tables, uniformizes them inside a
// region, and writes the resulting layout and spacing statistics.
//
// Usage: strew [flags] table.csv [table2.csv ...]
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/strew/config"
	"github.com/pthm-cable/strew/corpus"
	"github.com/pthm-cable/strew/density"
	"github.com/pthm-cable/strew/geom"
	"github.com/pthm-cable/strew/ingest"
	"github.com/pthm-cable/strew/telemetry"
)

var (
	configPath   = flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	xcol         = flag.Int("xcol", 0, "Descriptor column for x")
	ycol         = flag.Int("ycol", 1, "Descriptor column for y")
	regionPath   = flag.String("region", "", "Region YAML file (empty = unit square)")
	densityExpr  = flag.String("density", "", "Density expression h(x, y), e.g. \"1 + 4*x\"")
	exportPeriod = flag.Int("export-period", 0, "Invoke the export hook every N steps (0 = final only)")
	stopTol      = flag.Float64("stop-tol", 0, "Convergence tolerance (0 = configured default)")
	interp       = flag.Float64("interp", 0, "Interpolation toward original positions for the written layout")
	attractors   = flag.String("attractors", "", "Gaussian attractors as mx,my,sx,sy,theta[;...]")
	outputDir    = flag.String("output", "out", "Output directory")
)

// logWriter is the destination for log output.
var logWriter io.Writer = os.Stdout

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	fmt.Fprintf(logWriter, format+"\n", args...)
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("at least one descriptor CSV is required")
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatal(err)
	}

	table, err := ingest.LoadCSV(flag.Args()...)
	if err != nil {
		log.Fatal(err)
	}
	Logf("loaded %d buffers, %d grains, %d columns", len(table.Buffers()), table.Len(), table.Cols())

	c, err := corpus.New(table, *xcol, *ycol, config.Cfg())
	if err != nil {
		log.Fatal(err)
	}
	if *regionPath != "" {
		region, normalized, err := loadRegion(*regionPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := c.SetRegion(region, normalized); err != nil {
			log.Fatal(err)
		}
	}
	if *densityExpr != "" {
		h, err := density.Compile(*densityExpr)
		if err != nil {
			log.Fatal(err)
		}
		if err := c.SetDensity(h); err != nil {
			log.Fatal(err)
		}
	}

	// Ctrl-C requests a cooperative stop at the next step boundary; a
	// second one kills the process the usual way.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		Logf("stop requested")
		c.Stop()
		signal.Stop(sig)
	}()

	exports := 0
	c.SetExporter(func(float64, []corpus.BufferFrame) {
		exports++
	})

	steps, tris, err := c.Distribute(corpus.RunOptions{
		ExportPeriod: *exportPeriod,
		StopTol:      *stopTol,
	})
	if err != nil {
		log.Fatal(err)
	}
	if steps < 0 {
		Logf("stopped after %d steps, %d triangulations", -steps, tris)
	} else {
		Logf("converged in %d steps, %d triangulations (%d intermediate exports)", steps, tris, exports)
	}

	if *attractors != "" {
		gaussians, err := parseAttractors(*attractors)
		if err != nil {
			log.Fatal(err)
		}
		if err := c.SimpleAttractors(gaussians, false); err != nil {
			log.Fatal(err)
		}
		Logf("applied %d attractors", len(gaussians))
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatal(err)
	}
	var final []corpus.BufferFrame
	c.SetExporter(func(_ float64, frames []corpus.BufferFrame) {
		final = frames
	})
	c.Export(*interp)
	if err := om.WriteLayout(final); err != nil {
		log.Fatal(err)
	}
	if err := om.WriteSpacing(telemetry.ComputeSpacing(c.Positions())); err != nil {
		log.Fatal(err)
	}
	Logf("wrote layout.csv and spacing.csv to %s", *outputDir)
}

// regionFile is the on-disk region format: a vertex list, normalized
// or in the descriptor frame.
type regionFile struct {
	Normalized bool         `yaml:"normalized"`
	Vertices   [][2]float64 `yaml:"vertices"`
}

func loadRegion(path string) (geom.Polygon, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geom.Polygon{}, false, err
	}
	var rf regionFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return geom.Polygon{}, false, fmt.Errorf("parsing region file: %w", err)
	}
	verts := make([]geom.Vec, len(rf.Vertices))
	for i, v := range rf.Vertices {
		verts[i] = geom.Vec{X: v[0], Y: v[1]}
	}
	return geom.NewPolygon(verts), rf.Normalized, nil
}

func parseAttractors(s string) ([]corpus.Gaussian, error) {
	var out []corpus.Gaussian
	for _, group := range strings.Split(s, ";") {
		fields := strings.Split(strings.TrimSpace(group), ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("attractor %q: want 5 values mx,my,sx,sy,theta", group)
		}
		var v [5]float64
		for i, f := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("attractor %q: %w", group, err)
			}
			v[i] = x
		}
		out = append(out, corpus.Gaussian{MX: v[0], MY: v[1], SigmaX: v[2], SigmaY: v[3], Theta: v[4]})
	}
	return out, nil
}
