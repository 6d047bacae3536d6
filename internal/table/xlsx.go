package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when the requested worksheet does not exist.
var ErrSheetNotFound = constError("worksheet not found")

// metadataSheets are skipped when picking the data sheet automatically.
//
//nolint:gochecknoglobals // Fixed lookup table.
var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// xlsxReader streams rows from one worksheet.
type xlsxReader struct {
	file    *excelize.File
	rows    *excelize.Rows
	columns []string
	na      NASet
	closer  func() error
	done    bool
}

func newXLSXReader(r io.Reader, sheet string, na NASet, closer func() error) (*xlsxReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	x := &xlsxReader{file: f, na: na}
	x.closer = func() error {
		var errs []error
		if x.rows != nil {
			errs = append(errs, x.rows.Close())
		}
		errs = append(errs, f.Close(), closer())
		return errors.Join(errs...)
	}

	name, err := pickSheet(f.GetSheetList(), sheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	x.rows, err = f.Rows(name)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("opening rows of sheet %q: %w", name, err)
	}

	for x.rows.Next() {
		header, err := x.rows.Columns()
		if err != nil {
			_ = x.rows.Close()
			_ = f.Close()
			return nil, fmt.Errorf("reading header of sheet %q: %w", name, err)
		}
		if len(header) == 0 {
			continue
		}
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
		x.columns = DedupeColumns(header)
		return x, nil
	}

	_ = x.rows.Close()
	_ = f.Close()
	return nil, ErrEmptyInput
}

// pickSheet returns want when set, otherwise the first sheet that is not a
// metadata sheet, falling back to the last sheet.
func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", ErrEmptyInput
	}
	if want != "" {
		if !slices.Contains(sheets, want) {
			return "", fmt.Errorf("%q: %w", want, ErrSheetNotFound)
		}
		return want, nil
	}
	for _, s := range sheets {
		if !metadataSheets[strings.ToLower(s)] {
			return s, nil
		}
	}
	return sheets[len(sheets)-1], nil
}

func (x *xlsxReader) Columns() []string { return x.columns }

func (x *xlsxReader) Next(ctx context.Context, n int) ([]Row, error) {
	if x.done {
		return nil, io.EOF
	}
	rows := make([]Row, 0, n)
	for len(rows) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !x.rows.Next() {
			if err := x.rows.Error(); err != nil {
				return nil, fmt.Errorf("iterating rows: %w", err)
			}
			x.done = true
			break
		}
		record, err := x.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		row, err := buildRow(record, len(x.columns), x.na)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	return rows, nil
}

func (x *xlsxReader) Close() error { return x.closer() }
