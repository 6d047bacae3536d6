// Package export writes a processed review table to a file or database.
//
// The target string selects the sink:
//   - *.csv writes comma separated text with a header row
//   - *.xlsx writes a single-sheet workbook
//   - sqlite://<path> or postgres://... (postgresql://) inserts into a table
//
// Null cells become empty CSV fields, blank XLSX cells or SQL NULLs.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rshade/reviewlens/internal/table"
)

// ErrUnsupportedTarget is returned by New for an unrecognised target.
var ErrUnsupportedTarget = errors.New("unsupported export target")

// DefaultTable is the SQL table name used when none is given.
const DefaultTable = "reviews"

// DefaultSheet is the worksheet name used for XLSX output.
const DefaultSheet = "reviews"

// Exporter writes a table to its sink.
type Exporter interface {
	Export(ctx context.Context, t *table.Table) error
}

// Options tunes exporters. Zero values select defaults.
type Options struct {
	// Table is the SQL table name.
	Table string

	// Sheet is the XLSX worksheet name.
	Sheet string
}

// Kind names a sink type.
type Kind string

// Sink kinds.
const (
	KindCSV      Kind = "csv"
	KindXLSX     Kind = "xlsx"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// Resolve classifies target without opening anything.
func Resolve(target string) (Kind, error) {
	lower := strings.ToLower(strings.TrimSpace(target))
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		return KindSQLite, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return KindPostgres, nil
	case filepath.Ext(lower) == ".csv":
		return KindCSV, nil
	case filepath.Ext(lower) == ".xlsx":
		return KindXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}
}

// New returns the exporter for target.
func New(target string, opts Options) (Exporter, error) {
	kind, err := Resolve(target)
	if err != nil {
		return nil, err
	}
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.Sheet == "" {
		opts.Sheet = DefaultSheet
	}

	switch kind {
	case KindCSV:
		return &CSVExporter{Path: target}, nil
	case KindXLSX:
		return &XLSXExporter{Path: target, Sheet: opts.Sheet}, nil
	case KindSQLite:
		return &SQLExporter{Driver: driverSQLite, DSN: target[len("sqlite://"):], Table: opts.Table}, nil
	default:
		return &SQLExporter{Driver: driverPostgres, DSN: target, Table: opts.Table}, nil
	}
}

// cellValue maps a cell to the value handed to a sink; nil is a null.
func cellValue(c table.Cell) any {
	if !c.Valid {
		return nil
	}
	return c.Value
}
