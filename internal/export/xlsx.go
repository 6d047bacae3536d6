package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rshade/reviewlens/internal/table"
)

// XLSXExporter writes the table to a one-sheet workbook using the excelize
// stream writer, so memory does not grow with row count.
type XLSXExporter struct {
	Path  string
	Sheet string
}

// Export implements Exporter.
func (e *XLSXExporter) Export(ctx context.Context, t *table.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	sheet := e.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	values := make([]any, len(t.Columns))
	for i, row := range t.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := range values {
			values[j] = cellValue(row.Get(j))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}
	if err := f.SaveAs(e.Path); err != nil {
		return fmt.Errorf("saving %s: %w", e.Path, err)
	}
	return nil
}
