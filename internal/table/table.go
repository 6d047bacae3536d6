// Package table holds the in-memory row model for review datasets and the
// readers that stream those rows out of CSV, TSV and XLSX files.
package table

import (
	"fmt"
	"slices"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUnsupportedFormat is returned by Open for an unknown file extension.
	ErrUnsupportedFormat = constError("unsupported input format")

	// ErrEmptyInput is returned by Open when the file has no header row.
	ErrEmptyInput = constError("input has no header row")

	// ErrTooManyFields is returned when a data row is wider than the header.
	ErrTooManyFields = constError("row has more fields than the header")

	// ErrColumnMismatch is returned by Concat when batches disagree on columns.
	ErrColumnMismatch = constError("batch columns do not match")
)

// Cell is a single value. Valid is false for a null.
type Cell struct {
	Value string
	Valid bool
}

// Null is the null cell.
//
//nolint:gochecknoglobals // Immutable zero value used for readability.
var Null = Cell{}

// String returns a present cell.
func String(v string) Cell { return Cell{Value: v, Valid: true} }

// Row is an ordered list of cells aligned with a column list.
type Row []Cell

// Get returns the cell at column index i, or Null when the row is too short
// or i is negative.
func (r Row) Get(i int) Cell {
	if i < 0 || i >= len(r) {
		return Null
	}
	return r[i]
}

// Batch is a bounded, ordered slice of rows read in one step.
type Batch struct {
	// Index is the 0-based position of the batch in the source.
	Index   int
	Columns []string
	Rows    []Row
}

// ColumnIndex returns the position of name in columns, or -1.
func ColumnIndex(columns []string, name string) int {
	return slices.Index(columns, name)
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int { return len(b.Rows) }

// Table is the concatenation of processed batches. A row's index is its
// position in Rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns every cell of the named column, or nil when it is absent.
func (t *Table) Column(name string) []Cell {
	idx := ColumnIndex(t.Columns, name)
	if idx < 0 {
		return nil
	}
	out := make([]Cell, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(idx)
	}
	return out
}

// Concat joins batches in slice order, keeping row order within each batch.
// columns is used for the result when batches is empty.
func Concat(columns []string, batches []*Batch) (*Table, error) {
	total := 0
	for _, b := range batches {
		total += len(b.Rows)
	}

	t := &Table{Columns: slices.Clone(columns), Rows: make([]Row, 0, total)}
	for i, b := range batches {
		if i == 0 && len(columns) == 0 {
			t.Columns = slices.Clone(b.Columns)
		}
		if !slices.Equal(t.Columns, b.Columns) {
			return nil, fmt.Errorf("batch %d: %w", b.Index, ErrColumnMismatch)
		}
		t.Rows = append(t.Rows, b.Rows...)
	}
	return t, nil
}
