package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/strew/corpus"
)

// LayoutRow is one grain of an exported layout in the descriptor
// frame.
type LayoutRow struct {
	Buffer string  `csv:"buffer"`
	Index  int     `csv:"index"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
}

// OutputManager writes run output into a directory. A nil manager
// (empty directory) disables output.
type OutputManager struct {
	dir string
}

// NewOutputManager creates the output directory. Returns nil if dir is
// empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// WriteLayout writes an exported layout to layout.csv, buffers in
// export order.
func (om *OutputManager) WriteLayout(frames []corpus.BufferFrame) error {
	if om == nil {
		return nil
	}
	var rows []LayoutRow
	for _, fr := range frames {
		for i := range fr.X {
			rows = append(rows, LayoutRow{Buffer: fr.Buffer, Index: i, X: fr.X[i], Y: fr.Y[i]})
		}
	}
	return om.writeCSV("layout.csv", &rows)
}

// WriteSpacing writes spacing statistics to spacing.csv.
func (om *OutputManager) WriteSpacing(stats SpacingStats) error {
	if om == nil {
		return nil
	}
	rows := []SpacingStats{stats}
	return om.writeCSV("spacing.csv", &rows)
}

func (om *OutputManager) writeCSV(name string, rows interface{}) error {
	path := filepath.Join(om.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
