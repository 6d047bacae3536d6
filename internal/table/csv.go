package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// delimitedReader streams CSV or TSV records.
type delimitedReader struct {
	csv     *csv.Reader
	columns []string
	na      NASet
	closer  func() error
	done    bool
}

func newDelimitedReader(r io.Reader, comma rune, na NASet, closer func() error) (*delimitedReader, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	return &delimitedReader{
		csv:     cr,
		columns: DedupeColumns(header),
		na:      na,
		closer:  closer,
	}, nil
}

func (d *delimitedReader) Columns() []string { return d.columns }

func (d *delimitedReader) Next(ctx context.Context, n int) ([]Row, error) {
	if d.done {
		return nil, io.EOF
	}
	rows := make([]Row, 0, n)
	for len(rows) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := d.csv.Read()
		if errors.Is(err, io.EOF) {
			d.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		row, err := buildRow(record, len(d.columns), d.na)
		if err != nil {
			line, _ := d.csv.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	return rows, nil
}

func (d *delimitedReader) Close() error { return d.closer() }

// buildRow converts raw fields into a row of width cells, padding with Null.
func buildRow(record []string, width int, na NASet) (Row, error) {
	if len(record) > width {
		return nil, fmt.Errorf("expected %d fields, saw %d: %w", width, len(record), ErrTooManyFields)
	}
	row := make(Row, width)
	for i, raw := range record {
		row[i] = na.Cell(raw)
	}
	return row, nil
}

// DedupeColumns renames repeated header names to name.1, name.2 and so on,
// skipping suffixes that collide with an existing column.
func DedupeColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	for i, h := range header {
		count, dup := seen[h]
		if !dup {
			seen[h] = 1
			out[i] = h
			continue
		}
		name := h
		for {
			name = h + "." + strconv.Itoa(count)
			count++
			if !taken[name] {
				break
			}
		}
		seen[h] = count
		taken[name] = true
		out[i] = name
	}
	return out
}
