// Package ingest assembles descriptor tables for the engine.
//
// A table is an ordered collection of named buffers, each a sequence
// of descriptor rows. Buffer order is insertion order and is
// preserved through the engine: exported layouts slice back into the
// same buffers in the same order.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Buffer is one named descriptor buffer.
type Buffer struct {
	Name string
	Rows [][]float64
}

// Table is an ordered set of buffers under construction or ready for
// the engine.
type Table struct {
	buffers []Buffer
	index   map[string]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddBuffer declares a buffer of nRows rows and nCols descriptor
// columns, to be filled by AddRow. Redeclaring a name resets it in
// place, keeping its position in the order.
func (t *Table) AddBuffer(name string, nRows, nCols int) error {
	if nRows <= 0 || nCols <= 0 {
		return fmt.Errorf("ingest: buffer %q: invalid shape %dx%d", name, nRows, nCols)
	}
	rows := make([][]float64, nRows)
	for i := range rows {
		rows[i] = make([]float64, nCols)
	}
	if i, ok := t.index[name]; ok {
		t.buffers[i].Rows = rows
		return nil
	}
	t.index[name] = len(t.buffers)
	t.buffers = append(t.buffers, Buffer{Name: name, Rows: rows})
	return nil
}

// AddRow stores one descriptor row at the given index of a declared
// buffer.
func (t *Table) AddRow(name string, index int, descriptors []float64) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("ingest: unknown buffer %q", name)
	}
	rows := t.buffers[i].Rows
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("ingest: buffer %q: row index %d out of range", name, index)
	}
	if len(descriptors) != len(rows[index]) {
		return fmt.Errorf("ingest: buffer %q row %d: got %d descriptors, want %d",
			name, index, len(descriptors), len(rows[index]))
	}
	copy(rows[index], descriptors)
	return nil
}

// Append adds a buffer with ready-made rows, keeping insertion order.
func (t *Table) Append(name string, rows [][]float64) {
	if i, ok := t.index[name]; ok {
		t.buffers[i].Rows = rows
		return
	}
	t.index[name] = len(t.buffers)
	t.buffers = append(t.buffers, Buffer{Name: name, Rows: rows})
}

// Buffers returns the buffers in insertion order. The slice is shared;
// callers must not mutate it.
func (t *Table) Buffers() []Buffer { return t.buffers }

// Len returns the total row count across all buffers.
func (t *Table) Len() int {
	n := 0
	for _, b := range t.buffers {
		n += len(b.Rows)
	}
	return n
}

// Cols returns the descriptor column count, zero for an empty table.
// Buffers with mismatched widths are rejected at load time.
func (t *Table) Cols() int {
	for _, b := range t.buffers {
		if len(b.Rows) > 0 {
			return len(b.Rows[0])
		}
	}
	return 0
}

// LoadCSV reads one buffer per file, in argument order. The buffer
// name is the file's base name without extension. The first line is
// skipped as a header when any of its fields does not parse as a
// number.
func LoadCSV(paths ...string) (*Table, error) {
	t := NewTable()
	for _, path := range paths {
		rows, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Append(name, rows)
	}
	if cols := t.Cols(); cols > 0 {
		for _, b := range t.buffers {
			for _, r := range b.Rows {
				if len(r) != cols {
					return nil, fmt.Errorf("ingest: buffer %q: ragged row width %d, want %d",
						b.Name, len(r), cols)
				}
			}
		}
	}
	return t, nil
}

func readCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading %s: %w", path, err)
	}
	rows := make([][]float64, 0, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec))
		ok := true
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				ok = false
				break
			}
			row[j] = v
		}
		if !ok {
			if i == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("ingest: %s: non-numeric field on line %d", path, i+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
